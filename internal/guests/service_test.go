package guests

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/platform/httpx"
)

type stubStore struct {
	guests map[uuid.UUID]*Guest
}

func newStubStore() *stubStore {
	return &stubStore{guests: map[uuid.UUID]*Guest{}}
}

func (s *stubStore) Create(_ context.Context, g Guest) (*Guest, error) {
	s.guests[g.ID] = &g
	return &g, nil
}

func (s *stubStore) FindByPass(_ context.Context, apartmentID uuid.UUID, passCode string) (*Guest, error) {
	for _, g := range s.guests {
		if g.ApartmentID == apartmentID && g.PassCode == passCode {
			return g, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *stubStore) Get(_ context.Context, id uuid.UUID) (*Guest, error) {
	g, ok := s.guests[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return g, nil
}

func (s *stubStore) SetStatus(_ context.Context, id uuid.UUID, status Status, _ time.Time) error {
	g, ok := s.guests[id]
	if !ok {
		return httpx.ErrNotFound
	}
	g.Status = status
	return nil
}

func (s *stubStore) ListForFlat(_ context.Context, flatID uuid.UUID, _, _ int) ([]Guest, int, error) {
	var out []Guest
	for _, g := range s.guests {
		if g.FlatID == flatID {
			out = append(out, *g)
		}
	}
	return out, len(out), nil
}

func (s *stubStore) ListExpected(_ context.Context, apartmentID uuid.UUID, _, _ int) ([]Guest, int, error) {
	var out []Guest
	for _, g := range s.guests {
		if g.ApartmentID == apartmentID && g.Status == StatusExpected {
			out = append(out, *g)
		}
	}
	return out, len(out), nil
}

type recordingDispatcher struct {
	payloads   []notify.Payload
	recipients [][]uuid.UUID
}

func (d *recordingDispatcher) Send(_ context.Context, payload notify.Payload, _ []string, recipients []uuid.UUID) error {
	d.payloads = append(d.payloads, payload)
	d.recipients = append(d.recipients, recipients)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubStore, *recordingDispatcher) {
	t.Helper()
	store := newStubStore()
	dispatcher := &recordingDispatcher{}
	svc := NewService(store, dispatcher, nil)
	return svc, store, dispatcher
}

func TestPreapproveGeneratesSixDigitPass(t *testing.T) {
	svc, _, _ := newTestService(t)

	guest, err := svc.Preapprove(context.Background(), uuid.New(), uuid.New(), uuid.New(),
		"Visiting Plumber", "+15550001111", time.Now().Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, StatusExpected, guest.Status)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), guest.PassCode)
}

func TestCheckInNotifiesHost(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	apartmentID := uuid.New()
	hostID := uuid.New()

	guest, err := svc.Preapprove(context.Background(), apartmentID, uuid.New(), hostID,
		"Aunt May", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	checkedIn, err := svc.CheckIn(context.Background(), apartmentID, guest.PassCode)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, checkedIn.Status)
	require.NotNil(t, checkedIn.CheckedInAt)

	require.Len(t, dispatcher.payloads, 1)
	assert.Equal(t, "guest.arrived", dispatcher.payloads[0].Event)
	assert.Equal(t, []uuid.UUID{hostID}, dispatcher.recipients[0])
}

func TestCheckInRejectsUsedPass(t *testing.T) {
	svc, _, _ := newTestService(t)
	apartmentID := uuid.New()

	guest, err := svc.Preapprove(context.Background(), apartmentID, uuid.New(), uuid.New(),
		"One Timer", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), apartmentID, guest.PassCode)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), apartmentID, guest.PassCode)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCheckInScopedToApartment(t *testing.T) {
	svc, _, _ := newTestService(t)

	guest, err := svc.Preapprove(context.Background(), uuid.New(), uuid.New(), uuid.New(),
		"Wrong Gate", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), uuid.New(), guest.PassCode)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCheckOutRequiresCheckedIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	apartmentID := uuid.New()

	guest, err := svc.Preapprove(context.Background(), apartmentID, uuid.New(), uuid.New(),
		"Early Leaver", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), apartmentID, guest.ID)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CheckIn(context.Background(), apartmentID, guest.PassCode)
	require.NoError(t, err)

	out, err := svc.CheckOut(context.Background(), apartmentID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, out.Status)

	_, err = svc.CheckOut(context.Background(), uuid.New(), guest.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}
