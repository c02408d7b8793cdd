package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societydesk/societydesk/internal/token"
)

type memStore struct {
	tokens map[uuid.UUID][]string
}

func (m *memStore) Register(ctx context.Context, t DeviceToken) error { return nil }

func (m *memStore) Unregister(ctx context.Context, principalID uuid.UUID, deviceToken string) error {
	return nil
}

func (m *memStore) TokensFor(ctx context.Context, recipients []uuid.UUID) ([]string, error) {
	var out []string
	for _, r := range recipients {
		out = append(out, m.tokens[r]...)
	}
	return out, nil
}

func (m *memStore) TokensForKind(ctx context.Context, apartmentID uuid.UUID, kind token.Kind) ([]string, error) {
	return nil, nil
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed []string
	fail   map[string]error
}

func (p *recordingPusher) Push(ctx context.Context, deviceToken string, payload Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.fail[deviceToken]; ok {
		return err
	}
	p.pushed = append(p.pushed, deviceToken)
	return nil
}

func TestFanoutResolvesAndDeduplicates(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	store := &memStore{tokens: map[uuid.UUID][]string{
		alice: {"tok-a1", "tok-a2"},
		bob:   {"tok-b", "tok-a1"}, // shared device, pushed once
	}}
	pusher := &recordingPusher{}
	fanout := NewFanout(store, pusher, nil)

	err := fanout.Send(context.Background(), Payload{Event: "guest.arrived"},
		[]string{"tok-x"}, []uuid.UUID{alice, bob})
	require.NoError(t, err)

	sort.Strings(pusher.pushed)
	assert.Equal(t, []string{"tok-a1", "tok-a2", "tok-b", "tok-x"}, pusher.pushed)
}

func TestFanoutSurvivesDeadDevices(t *testing.T) {
	alice := uuid.New()
	store := &memStore{tokens: map[uuid.UUID][]string{
		alice: {"tok-dead", "tok-live"},
	}}
	dead := errors.New("gateway status 410")
	pusher := &recordingPusher{fail: map[string]error{"tok-dead": dead}}
	fanout := NewFanout(store, pusher, nil)

	err := fanout.Send(context.Background(), Payload{Event: "alert.sos"}, nil, []uuid.UUID{alice})
	assert.ErrorIs(t, err, dead)
	assert.Equal(t, []string{"tok-live"}, pusher.pushed)
}

func TestFanoutNoTargetsIsNoop(t *testing.T) {
	fanout := NewFanout(&memStore{}, &recordingPusher{}, nil)
	err := fanout.Send(context.Background(), Payload{Event: "noop"}, nil, nil)
	assert.NoError(t, err)
}
