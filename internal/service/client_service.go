package service

import (
	"context"

	"github.com/google/uuid"

	"fieldos/internal/domain"
	"fieldos/internal/port"
)

// CreateClientInput is the DTO for creating a client.
type CreateClientInput struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
}

// UpdateClientInput is the DTO for updating a client.
type UpdateClientInput struct {
	Name        *string `json:"name"`
	CompanyName *string `json:"company_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
}

// CreatePropertyInput is the DTO for adding a service address to a client.
type CreatePropertyInput struct {
	Street     string `json:"street" binding:"required"`
	Unit       string `json:"unit"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ClientService defines the client and property management contract.
type ClientService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, tenantID, clientID uuid.UUID, input UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, tenantID, clientID uuid.UUID) error

	AddProperty(ctx context.Context, tenantID, clientID uuid.UUID, input CreatePropertyInput) (*domain.Property, error)
	ListProperties(ctx context.Context, tenantID, clientID uuid.UUID) ([]domain.Property, error)
}

type clientService struct {
	repo port.ClientRepository
}

// NewClientService creates a new ClientService implementation.
func NewClientService(repo port.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Create(ctx context.Context, tenantID uuid.UUID, input CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		TenantID:    tenantID,
		Name:        input.Name,
		CompanyName: input.CompanyName,
		Email:       input.Email,
		Phone:       input.Phone,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error) {
	return s.repo.GetByID(ctx, tenantID, clientID)
}

func (s *clientService) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	return s.repo.List(ctx, tenantID, offset, limit)
}

func (s *clientService) Update(ctx context.Context, tenantID, clientID uuid.UUID, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.CompanyName != nil {
		client.CompanyName = *input.CompanyName
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, clientID)
}

func (s *clientService) AddProperty(ctx context.Context, tenantID, clientID uuid.UUID, input CreatePropertyInput) (*domain.Property, error) {
	// Validate ownership before writing the property row.
	if _, err := s.repo.GetByID(ctx, tenantID, clientID); err != nil {
		return nil, err
	}

	property := &domain.Property{
		TenantID:   tenantID,
		ClientID:   clientID,
		Street:     input.Street,
		Unit:       input.Unit,
		City:       input.City,
		Region:     input.Region,
		PostalCode: input.PostalCode,
		Country:    input.Country,
	}
	if err := s.repo.CreateProperty(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *clientService) ListProperties(ctx context.Context, tenantID, clientID uuid.UUID) ([]domain.Property, error) {
	return s.repo.ListProperties(ctx, tenantID, clientID)
}
