package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/token"
)

type stubStore struct {
	alerts map[uuid.UUID]*Alert
}

func newStubStore() *stubStore {
	return &stubStore{alerts: map[uuid.UUID]*Alert{}}
}

func (s *stubStore) Create(_ context.Context, a Alert) (*Alert, error) {
	a.RaisedAt = time.Now().UTC()
	s.alerts[a.ID] = &a
	return &a, nil
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (*Alert, error) {
	a, ok := s.alerts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return a, nil
}

func (s *stubStore) Resolve(_ context.Context, apartmentID, alertID, guardID uuid.UUID, at time.Time) error {
	a, ok := s.alerts[alertID]
	if !ok || a.ApartmentID != apartmentID || a.Status != StatusOpen {
		return httpx.ErrNotFound
	}
	a.Status = StatusResolved
	a.ResolvedAt = &at
	a.ResolvedBy = &guardID
	return nil
}

func (s *stubStore) List(_ context.Context, apartmentID uuid.UUID, openOnly bool, _, _ int) ([]Alert, int, error) {
	var out []Alert
	for _, a := range s.alerts {
		if a.ApartmentID != apartmentID {
			continue
		}
		if openOnly && a.Status != StatusOpen {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

type stubDevices struct {
	guardTokens map[uuid.UUID][]string
}

func (s *stubDevices) Register(context.Context, notify.DeviceToken) error { return nil }

func (s *stubDevices) Unregister(context.Context, uuid.UUID, string) error { return nil }

func (s *stubDevices) TokensFor(context.Context, []uuid.UUID) ([]string, error) { return nil, nil }

func (s *stubDevices) TokensForKind(_ context.Context, apartmentID uuid.UUID, kind token.Kind) ([]string, error) {
	if kind != token.KindGuard {
		return nil, nil
	}
	return s.guardTokens[apartmentID], nil
}

type recordingDispatcher struct {
	err     error
	events  []string
	tokens  [][]string
	targets [][]uuid.UUID
}

func (d *recordingDispatcher) Send(_ context.Context, payload notify.Payload, tokens []string, recipients []uuid.UUID) error {
	d.events = append(d.events, payload.Event)
	d.tokens = append(d.tokens, tokens)
	d.targets = append(d.targets, recipients)
	return d.err
}

func newTestService(devices *stubDevices, dispatcher *recordingDispatcher) (*Service, *stubStore) {
	store := newStubStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, devices, dispatcher, logger), store
}

func TestRaisePushesToGuardDevices(t *testing.T) {
	apartmentID := uuid.New()
	devices := &stubDevices{guardTokens: map[uuid.UUID][]string{
		apartmentID: {"guard-dev-1", "guard-dev-2"},
	}}
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestService(devices, dispatcher)

	alert, err := svc.Raise(context.Background(), apartmentID, uuid.New(), uuid.New(), "fire", "smoke on floor 3")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, alert.Status)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "alert.raised", dispatcher.events[0])
	assert.Equal(t, []string{"guard-dev-1", "guard-dev-2"}, dispatcher.tokens[0])
}

func TestRaiseSurvivesPushFailure(t *testing.T) {
	apartmentID := uuid.New()
	devices := &stubDevices{guardTokens: map[uuid.UUID][]string{apartmentID: {"d1"}}}
	dispatcher := &recordingDispatcher{err: errors.New("gateway down")}
	svc, store := newTestService(devices, dispatcher)

	alert, err := svc.Raise(context.Background(), apartmentID, uuid.New(), uuid.New(), "sos", "")
	require.NoError(t, err)

	saved, err := store.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, saved.Status)
}

func TestResolveNotifiesRaiser(t *testing.T) {
	apartmentID := uuid.New()
	clientID := uuid.New()
	guardID := uuid.New()
	devices := &stubDevices{}
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestService(devices, dispatcher)

	alert, err := svc.Raise(context.Background(), apartmentID, uuid.New(), clientID, "medical", "")
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), apartmentID, alert.ID, guardID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, guardID, *resolved.ResolvedBy)

	require.Len(t, dispatcher.events, 2)
	assert.Equal(t, "alert.resolved", dispatcher.events[1])
	assert.Equal(t, []uuid.UUID{clientID}, dispatcher.targets[1])
}

func TestResolveScopedToApartment(t *testing.T) {
	apartmentID := uuid.New()
	devices := &stubDevices{}
	svc, _ := newTestService(devices, &recordingDispatcher{})

	alert, err := svc.Raise(context.Background(), apartmentID, uuid.New(), uuid.New(), "sos", "")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), uuid.New(), alert.ID, uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
