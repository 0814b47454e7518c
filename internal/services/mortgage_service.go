package services

import (
	"context"
	"fmt"
	"log/slog"

	"mortgages/internal/amqp"
	"mortgages/internal/core"
	"mortgages/internal/storage"
)

// MortgageService orchestrates mortgage and scenario operations across
// SQLite and AMQP. The database is the source of truth; the queue only
// carries backup export notifications and its failures never fail a request.
type MortgageService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewMortgageService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *MortgageService {
	return &MortgageService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateMortgage saves a mortgage locally and publishes a sync message.
func (s *MortgageService) CreateMortgage(ctx context.Context, m core.Mortgage) (core.Mortgage, error) {
	if err := m.Validate(); err != nil {
		return core.Mortgage{}, err
	}

	created, err := s.storage.CreateMortgage(ctx, m)
	if err != nil {
		return core.Mortgage{}, fmt.Errorf("save mortgage: %w", err)
	}

	// New rows start at version 1
	if err := s.publishSyncMessage(ctx, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", created.ID, "error", err)
		// Don't fail the request, the mortgage is saved locally
	}

	return created, nil
}

func (s *MortgageService) GetMortgage(ctx context.Context, id int64) (core.Mortgage, error) {
	return s.storage.GetMortgage(ctx, id)
}

func (s *MortgageService) ListMortgages(ctx context.Context) ([]core.Mortgage, error) {
	return s.storage.ListMortgages(ctx)
}

// UpdateMortgage replaces a mortgage's fields and re-queues it for export.
func (s *MortgageService) UpdateMortgage(ctx context.Context, m core.Mortgage) (core.Mortgage, error) {
	if err := m.Validate(); err != nil {
		return core.Mortgage{}, err
	}

	version, err := s.storage.UpdateMortgage(ctx, m)
	if err != nil {
		return core.Mortgage{}, err
	}

	if err := s.publishSyncMessage(ctx, m.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", m.ID, "version", version, "error", err)
	}

	return s.storage.GetMortgage(ctx, m.ID)
}

// DeleteMortgage removes a mortgage and its scenarios.
func (s *MortgageService) DeleteMortgage(ctx context.Context, id int64) error {
	return s.storage.DeleteMortgage(ctx, id)
}

// CreateScenario saves a what-if scenario after checking its mortgage exists.
func (s *MortgageService) CreateScenario(ctx context.Context, sc core.Scenario) (core.Scenario, error) {
	if err := sc.Validate(); err != nil {
		return core.Scenario{}, err
	}
	if _, err := s.storage.GetMortgage(ctx, sc.MortgageID); err != nil {
		return core.Scenario{}, err
	}

	created, err := s.storage.CreateScenario(ctx, sc)
	if err != nil {
		return core.Scenario{}, fmt.Errorf("save scenario: %w", err)
	}
	return created, nil
}

func (s *MortgageService) GetScenario(ctx context.Context, id int64) (core.Scenario, error) {
	return s.storage.GetScenario(ctx, id)
}

func (s *MortgageService) ListScenarios(ctx context.Context, mortgageID int64) ([]core.Scenario, error) {
	if _, err := s.storage.GetMortgage(ctx, mortgageID); err != nil {
		return nil, err
	}
	return s.storage.ListScenarios(ctx, mortgageID)
}

// UpdateScenario replaces a scenario's fields.
func (s *MortgageService) UpdateScenario(ctx context.Context, sc core.Scenario) (core.Scenario, error) {
	if err := sc.Validate(); err != nil {
		return core.Scenario{}, err
	}
	if err := s.storage.UpdateScenario(ctx, sc); err != nil {
		return core.Scenario{}, err
	}
	return s.storage.GetScenario(ctx, sc.ID)
}

func (s *MortgageService) DeleteScenario(ctx context.Context, id int64) error {
	return s.storage.DeleteScenario(ctx, id)
}

func (s *MortgageService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishMortgageSync(ctx, id, version)
}

// Close closes both storage and AMQP connections
func (s *MortgageService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close mortgage service: %v", errs)
	}

	return nil
}
