package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societydesk/societydesk/internal/auth"
)

func newOTPStore(t *testing.T) (*auth.OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return auth.NewOTPStore(client, 5*time.Minute), mr
}

func TestOTPConsumeOnce(t *testing.T) {
	store, _ := newOTPStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "+15550100010", "424242"))
	require.NoError(t, store.Consume(ctx, "+15550100010", "424242"))
	assert.ErrorIs(t, store.Consume(ctx, "+15550100010", "424242"), auth.ErrOTPMismatch)
}

func TestOTPWrongCode(t *testing.T) {
	store, _ := newOTPStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "+15550100011", "424242"))
	assert.ErrorIs(t, store.Consume(ctx, "+15550100011", "000000"), auth.ErrOTPMismatch)
	// The pending code survives a wrong guess.
	assert.NoError(t, store.Consume(ctx, "+15550100011", "424242"))
}

func TestOTPExpires(t *testing.T) {
	store, mr := newOTPStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "+15550100012", "424242"))
	mr.FastForward(6 * time.Minute)
	assert.ErrorIs(t, store.Consume(ctx, "+15550100012", "424242"), auth.ErrOTPMismatch)
}

func TestGenerateCodeShape(t *testing.T) {
	for i := 0; i < 32; i++ {
		code, err := auth.GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
