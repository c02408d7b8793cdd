package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/societydesk/societydesk/internal/auth"
	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/token"
)

type stubRepo struct {
	staff  map[string]*auth.StaffAccount
	client *principal.Client
	emails []string
	hashes map[uuid.UUID]string
}

func newStubRepo() *stubRepo {
	return &stubRepo{staff: map[string]*auth.StaffAccount{}, hashes: map[uuid.UUID]string{}}
}

func (s *stubRepo) FindStaffByEmail(ctx context.Context, kind token.Kind, email string) (*auth.StaffAccount, error) {
	if acc, ok := s.staff[string(kind)+"/"+email]; ok {
		return acc, nil
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) FindStaffByID(ctx context.Context, kind token.Kind, id uuid.UUID) (*auth.StaffAccount, error) {
	for _, acc := range s.staff {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) SetBlockedToken(ctx context.Context, kind token.Kind, id uuid.UUID, blocked string) error {
	return nil
}

func (s *stubRepo) SetPassword(ctx context.Context, kind token.Kind, id uuid.UUID, hash string) error {
	s.hashes[id] = hash
	return nil
}

func (s *stubRepo) FindClientByPhone(ctx context.Context, phone string) (*principal.Client, error) {
	if s.client != nil && s.client.Phone == phone {
		return s.client, nil
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) CreateClient(ctx context.Context, phone string) (*principal.Client, error) {
	s.client = &principal.Client{ID: uuid.New(), Phone: phone}
	return s.client, nil
}

func (s *stubRepo) FindClientByID(ctx context.Context, id uuid.UUID) (*principal.Client, error) {
	if s.client != nil && s.client.ID == id {
		return s.client, nil
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) SetClientTokens(ctx context.Context, id uuid.UUID, tokens []string) error {
	s.client.Tokens = tokens
	return nil
}

func (s *stubRepo) FirstClientFlat(ctx context.Context, id uuid.UUID) (*principal.FlatMembership, error) {
	return nil, httpx.ErrNotFound
}

type stubMailer struct {
	sent []string
}

func (m *stubMailer) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

func testCodec() *token.Codec {
	secrets := make(map[token.Kind]token.KindSecrets)
	for _, kind := range []token.Kind{token.KindAdmin, token.KindClient, token.KindGuard, token.KindSuperAdmin} {
		secrets[kind] = token.KindSecrets{
			AccessSecret:  string(kind) + "-a",
			RefreshSecret: string(kind) + "-r",
			ResetSecret:   string(kind) + "-x",
			AccessTTL:     30 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
		}
	}
	return token.NewCodec(secrets)
}

func newService(t *testing.T, repo auth.Repository, cap int) (*auth.Service, *auth.OTPStore, *stubMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	otp := auth.NewOTPStore(client, 5*time.Minute)
	mailer := &stubMailer{}
	svc := auth.NewService(repo, testCodec(), otp, auth.LogCodeSender{}, mailer, cap, nil)
	return svc, otp, mailer
}

func TestLoginStaff(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := newStubRepo()
	repo.staff["admin/a@x.io"] = &auth.StaffAccount{ID: uuid.New(), Email: "a@x.io", PasswordHash: string(hash)}
	svc, _, _ := newService(t, repo, 5)

	pair, err := svc.LoginStaff(context.Background(), token.KindAdmin, "a@x.io", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	_, err = svc.LoginStaff(context.Background(), token.KindAdmin, "a@x.io", "wrong")
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)

	_, err = svc.LoginStaff(context.Background(), token.KindAdmin, "ghost@x.io", "correct-horse")
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)

	_, err = svc.LoginStaff(context.Background(), token.KindClient, "a@x.io", "correct-horse")
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestLoginArchivedStaffRejected(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	repo := newStubRepo()
	repo.staff["guard/g@x.io"] = &auth.StaffAccount{ID: uuid.New(), Email: "g@x.io", PasswordHash: string(hash), Archived: true}
	svc, _, _ := newService(t, repo, 5)

	_, err := svc.LoginStaff(context.Background(), token.KindGuard, "g@x.io", "correct-horse")
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestClientTokenCapEvictsOldest(t *testing.T) {
	repo := newStubRepo()
	repo.client = &principal.Client{ID: uuid.New(), Phone: "+15550100001"}
	svc, otp, _ := newService(t, repo, 3)

	var pairs []auth.TokenPair
	for i := 0; i < 5; i++ {
		require.NoError(t, otp.Put(context.Background(), "+15550100001", fmt.Sprintf("%06d", i)))
		pair, err := svc.VerifyOTP(context.Background(), "+15550100001", fmt.Sprintf("%06d", i))
		require.NoError(t, err)
		pairs = append(pairs, pair)
	}

	assert.Len(t, repo.client.Tokens, 3)
	// Oldest two evicted, newest three retained in order.
	assert.Equal(t, []string{pairs[2].Refresh, pairs[3].Refresh, pairs[4].Refresh}, repo.client.Tokens)
}

func TestVerifyOTPCreatesClientOnFirstUse(t *testing.T) {
	repo := newStubRepo()
	svc, otp, _ := newService(t, repo, 5)

	require.NoError(t, otp.Put(context.Background(), "+15550100002", "123456"))
	pair, err := svc.VerifyOTP(context.Background(), "+15550100002", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Refresh)
	require.NotNil(t, repo.client)
	assert.Equal(t, "+15550100002", repo.client.Phone)

	// A code is single use.
	_, err = svc.VerifyOTP(context.Background(), "+15550100002", "123456")
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestRefreshClientRotatesStoredToken(t *testing.T) {
	repo := newStubRepo()
	repo.client = &principal.Client{ID: uuid.New(), Phone: "+15550100003"}
	svc, otp, _ := newService(t, repo, 5)

	require.NoError(t, otp.Put(context.Background(), "+15550100003", "111111"))
	first, err := svc.VerifyOTP(context.Background(), "+15550100003", "111111")
	require.NoError(t, err)

	second, err := svc.RefreshClient(context.Background(), first.Refresh)
	require.NoError(t, err)
	assert.NotContains(t, repo.client.Tokens, first.Refresh)
	assert.Contains(t, repo.client.Tokens, second.Refresh)

	// The replaced token no longer refreshes.
	_, err = svc.RefreshClient(context.Background(), first.Refresh)
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestPasswordResetFlow(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	account := &auth.StaffAccount{ID: uuid.New(), Email: "a@x.io", PasswordHash: string(hash)}
	repo := newStubRepo()
	repo.staff["admin/a@x.io"] = account
	svc, _, mailer := newService(t, repo, 5)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), token.KindAdmin, "a@x.io"))
	require.Len(t, mailer.sent, 1)

	// Unknown addresses get the same silent success.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), token.KindAdmin, "ghost@x.io"))
	assert.Len(t, mailer.sent, 1)

	codec := testCodec()
	reset, err := codec.IssueReset(token.Claims{ID: account.ID.String()}, token.KindAdmin,
		account.PasswordHash[len(account.PasswordHash)-12:], time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token.KindAdmin, "a@x.io", reset, "new-password-1"))
	newHash := repo.hashes[account.ID]
	require.NotEmpty(t, newHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password-1")))

	// Using the same token after the hash changed must fail: the salt moved.
	account.PasswordHash = newHash
	err = svc.ConfirmPasswordReset(context.Background(), token.KindAdmin, "a@x.io", reset, "another-password")
	assert.ErrorIs(t, err, httpx.ErrUnauthenticated)
}
