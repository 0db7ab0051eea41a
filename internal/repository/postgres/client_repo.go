package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fieldos/internal/domain"
	"fieldos/internal/port"
)

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	client.ID = uuid.New()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, tenant_id, name, company_name, email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		client.ID, client.TenantID, client.Name, client.CompanyName,
		client.Email, client.Phone, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND tenant_id = $2", clientID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM clients WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.List count: %w", err)
	}

	var clients []domain.Client
	err = r.db.SelectContext(ctx, &clients,
		`SELECT * FROM clients WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.List: %w", err)
	}
	return clients, total, nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = $1, company_name = $2, email = $3, phone = $4, updated_at = $5
		 WHERE id = $6 AND tenant_id = $7`,
		client.Name, client.CompanyName, client.Email, client.Phone, client.UpdatedAt,
		client.ID, client.TenantID)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM clients WHERE id = $1 AND tenant_id = $2", clientID, tenantID)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *clientRepo) CreateProperty(ctx context.Context, property *domain.Property) error {
	property.ID = uuid.New()
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO properties (id, tenant_id, client_id, street, unit, city, region, postal_code, country, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		property.ID, property.TenantID, property.ClientID, property.Street, property.Unit,
		property.City, property.Region, property.PostalCode, property.Country,
		property.CreatedAt, property.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.CreateProperty: %w", err)
	}
	return nil
}

func (r *clientRepo) GetProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (*domain.Property, error) {
	var property domain.Property
	err := r.db.GetContext(ctx, &property,
		"SELECT * FROM properties WHERE id = $1 AND tenant_id = $2", propertyID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetProperty: %w", err)
	}
	return &property, nil
}

func (r *clientRepo) ListProperties(ctx context.Context, tenantID, clientID uuid.UUID) ([]domain.Property, error) {
	var properties []domain.Property
	err := r.db.SelectContext(ctx, &properties,
		`SELECT * FROM properties WHERE tenant_id = $1 AND client_id = $2 ORDER BY created_at`,
		tenantID, clientID)
	if err != nil {
		return nil, fmt.Errorf("clientRepo.ListProperties: %w", err)
	}
	return properties, nil
}
