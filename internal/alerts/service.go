package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/token"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, a Alert) (*Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*Alert, error)
	Resolve(ctx context.Context, apartmentID, alertID, guardID uuid.UUID, at time.Time) error
	List(ctx context.Context, apartmentID uuid.UUID, openOnly bool, limit, offset int) ([]Alert, int, error)
}

// Service raises and resolves SOS alerts.
type Service struct {
	repo       Store
	devices    notify.Store
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(repo Store, devices notify.Store, dispatcher notify.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		devices:    devices,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Raise records an SOS and pushes it to every guard device in the apartment.
// The alert is persisted first; a push failure never loses the alert.
func (s *Service) Raise(ctx context.Context, apartmentID, flatID, clientID uuid.UUID, category, message string) (*Alert, error) {
	alert, err := s.repo.Create(ctx, Alert{
		ID:          uuid.New(),
		ApartmentID: apartmentID,
		FlatID:      flatID,
		ClientID:    clientID,
		Category:    category,
		Message:     message,
		Status:      StatusOpen,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.devices.TokensForKind(ctx, apartmentID, token.KindGuard)
	if err != nil {
		s.logger.Error("resolve guard devices", slog.Any("error", err), slog.String("alert_id", alert.ID.String()))
		return alert, nil
	}
	err = s.dispatcher.Send(ctx, notify.Payload{
		Event: "alert.raised",
		Title: "SOS " + category,
		Body:  message,
		Data: map[string]string{
			"alert_id": alert.ID.String(),
			"flat_id":  flatID.String(),
		},
	}, tokens, nil)
	if err != nil {
		s.logger.Error("dispatch alert", slog.Any("error", err), slog.String("alert_id", alert.ID.String()))
	}
	return alert, nil
}

// Resolve closes an alert and tells the raiser.
func (s *Service) Resolve(ctx context.Context, apartmentID, alertID, guardID uuid.UUID) (*Alert, error) {
	if err := s.repo.Resolve(ctx, apartmentID, alertID, guardID, s.now()); err != nil {
		return nil, err
	}
	alert, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	err = s.dispatcher.Send(ctx, notify.Payload{
		Event: "alert.resolved",
		Title: "Alert resolved",
		Body:  "Security resolved your " + alert.Category + " alert",
		Data:  map[string]string{"alert_id": alert.ID.String()},
	}, nil, []uuid.UUID{alert.ClientID})
	if err != nil {
		s.logger.Warn("dispatch resolution", slog.Any("error", err))
	}
	return alert, nil
}

// List returns the apartment's alert log.
func (s *Service) List(ctx context.Context, apartmentID uuid.UUID, openOnly bool, limit, offset int) ([]Alert, int, error) {
	return s.repo.List(ctx, apartmentID, openOnly, limit, offset)
}
