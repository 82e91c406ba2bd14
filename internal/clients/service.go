package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// RepositoryPort defines data access methods for the client registry.
type RepositoryPort interface {
	// FindOrCreate resolves the single client row for a normalized mobile
	// number, creating it when absent. Concurrent callers racing on the
	// same number must all observe the same row, with exactly one of them
	// seeing created=true.
	FindOrCreate(ctx context.Context, input ClientInput) (*Client, bool, error)
	Get(ctx context.Context, id int64) (*Client, error)
	GetByMobile(ctx context.Context, mobile string) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Deactivate(ctx context.Context, id int64) error
}

// Service handles client registry business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// FindOrCreate returns the client for the given mobile number, creating a
// row when none exists. The raw mobile is normalized before any lookup, so
// "98-765 43210" and "9876543210" resolve to the same client.
func (s *Service) FindOrCreate(ctx context.Context, name, rawMobile string, email, city *string) (*Client, bool, error) {
	mobile, err := NormalizeMobile(rawMobile)
	if err != nil {
		return nil, false, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("%w: full name", shared.ErrRequiredField)
	}

	cityValue := "Unknown"
	if city != nil && strings.TrimSpace(*city) != "" {
		cityValue = strings.TrimSpace(*city)
	}

	client, created, err := s.repo.FindOrCreate(ctx, ClientInput{
		FullName: name,
		Mobile:   mobile,
		Email:    email,
		City:     cityValue,
	})
	if err != nil {
		return nil, false, fmt.Errorf("find or create client: %w", err)
	}
	return client, created, nil
}

// Get returns a client by id.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// GetByMobile resolves a client from a raw mobile number, normalizing it
// first so any formatting variant finds the same row.
func (s *Service) GetByMobile(ctx context.Context, rawMobile string) (*Client, error) {
	mobile, err := NormalizeMobile(rawMobile)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByMobile(ctx, mobile)
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, req)
}

// Update applies partial field updates to a client.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	updates := make(map[string]any)
	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("%w: full name", shared.ErrRequiredField)
		}
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Deactivate soft-deletes a client. Client rows are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get client: %w", err)
	}
	return s.repo.Deactivate(ctx, id)
}
