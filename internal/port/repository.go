package port

import (
	"context"

	"github.com/google/uuid"

	"fieldos/internal/domain"
)

// TenantRepository defines the contract for tenant persistence. Creating a
// tenant also seeds its sequence counter record.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	List(ctx context.Context, offset, limit int) ([]domain.Tenant, int, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the contract for staff user persistence.
// All query methods include tenantID to enforce tenant isolation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, tenantID, userID uuid.UUID) error
}

// ClientRepository defines the contract for client and property persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, tenantID, clientID uuid.UUID) error

	CreateProperty(ctx context.Context, property *domain.Property) error
	GetProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (*domain.Property, error)
	ListProperties(ctx context.Context, tenantID, clientID uuid.UUID) ([]domain.Property, error)
}

// SequenceRepository exposes the per-tenant sequence counter record for
// settings reads and prefix/padding updates. The counter values themselves
// advance only inside the document-creation transactions owned by the
// quote/job/invoice repositories.
type SequenceRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.SequenceCounters, error)
	UpdateSettings(ctx context.Context, counters *domain.SequenceCounters) error
}
