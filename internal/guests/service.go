package guests

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, g Guest) (*Guest, error)
	FindByPass(ctx context.Context, apartmentID uuid.UUID, passCode string) (*Guest, error)
	Get(ctx context.Context, id uuid.UUID) (*Guest, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error
	ListForFlat(ctx context.Context, flatID uuid.UUID, limit, offset int) ([]Guest, int, error)
	ListExpected(ctx context.Context, apartmentID uuid.UUID, limit, offset int) ([]Guest, int, error)
}

// Service wraps guest pre-approval business rules.
type Service struct {
	store      Store
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, dispatcher notify.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Preapprove registers an expected guest for a resident's flat and returns
// the gate pass.
func (s *Service) Preapprove(ctx context.Context, apartmentID, flatID, clientID uuid.UUID, name, phone string, expectedAt time.Time) (*Guest, error) {
	pass, err := newPassCode()
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, Guest{
		ID:          uuid.New(),
		ApartmentID: apartmentID,
		FlatID:      flatID,
		ClientID:    clientID,
		Name:        name,
		Phone:       phone,
		PassCode:    pass,
		Status:      StatusExpected,
		ExpectedAt:  expectedAt,
	})
}

// CheckIn admits a guest at the gate by pass code and notifies the host.
func (s *Service) CheckIn(ctx context.Context, apartmentID uuid.UUID, passCode string) (*Guest, error) {
	guest, err := s.store.FindByPass(ctx, apartmentID, passCode)
	if err != nil {
		return nil, err
	}
	if guest.Status != StatusExpected {
		return nil, fmt.Errorf("guests: pass already used: %w", httpx.ErrValidation)
	}
	at := s.now()
	if err := s.store.SetStatus(ctx, guest.ID, StatusCheckedIn, at); err != nil {
		return nil, err
	}
	guest.Status = StatusCheckedIn
	guest.CheckedInAt = &at

	// Arrival notice is best effort; the check-in already happened.
	err = s.dispatcher.Send(ctx, notify.Payload{
		Event: "guest.arrived",
		Title: "Guest arrived",
		Body:  guest.Name + " checked in at the gate",
		Data:  map[string]string{"guest_id": guest.ID.String()},
	}, nil, []uuid.UUID{guest.ClientID})
	if err != nil && s.logger != nil {
		s.logger.Warn("guest arrival notice", slog.Any("error", err))
	}
	return guest, nil
}

// CheckOut records a guest leaving.
func (s *Service) CheckOut(ctx context.Context, apartmentID, guestID uuid.UUID) (*Guest, error) {
	guest, err := s.store.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if guest.ApartmentID != apartmentID {
		return nil, fmt.Errorf("guests: wrong apartment: %w", httpx.ErrForbidden)
	}
	if guest.Status != StatusCheckedIn {
		return nil, fmt.Errorf("guests: not checked in: %w", httpx.ErrValidation)
	}
	at := s.now()
	if err := s.store.SetStatus(ctx, guest.ID, StatusCheckedOut, at); err != nil {
		return nil, err
	}
	guest.Status = StatusCheckedOut
	guest.CheckedOut = &at
	return guest, nil
}

// ListForFlat returns a resident's guests.
func (s *Service) ListForFlat(ctx context.Context, flatID uuid.UUID, limit, offset int) ([]Guest, int, error) {
	return s.store.ListForFlat(ctx, flatID, limit, offset)
}

// ListExpected returns the gate desk queue.
func (s *Service) ListExpected(ctx context.Context, apartmentID uuid.UUID, limit, offset int) ([]Guest, int, error) {
	return s.store.ListExpected(ctx, apartmentID, limit, offset)
}

// newPassCode produces the 6-digit gate pass handed to the guest.
func newPassCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("guests: pass code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
