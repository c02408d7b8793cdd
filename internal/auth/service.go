package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/token"
)

const resetTokenTTL = time.Hour

// saltFragmentLen is how much of the stored password hash salts a reset
// token. Changing the password changes the fragment and kills the token.
const saltFragmentLen = 12

// Service wraps the credential flows for all four panels.
type Service struct {
	repo     Repository
	codec    *token.Codec
	otp      *OTPStore
	sms      CodeSender
	mail     EmailEnqueuer
	tokenCap int
	logger   *slog.Logger
}

// NewService constructs a Service. tokenCap bounds each client's stored
// refresh-token list.
func NewService(repo Repository, codec *token.Codec, otp *OTPStore, sms CodeSender, mail EmailEnqueuer, tokenCap int, logger *slog.Logger) *Service {
	if tokenCap <= 0 {
		tokenCap = 5
	}
	return &Service{repo: repo, codec: codec, otp: otp, sms: sms, mail: mail, tokenCap: tokenCap, logger: logger}
}

func isStaffKind(kind token.Kind) bool {
	return kind == token.KindAdmin || kind == token.KindSuperAdmin || kind == token.KindGuard
}

// LoginStaff validates email/password credentials for a staff kind and mints
// a token pair.
func (s *Service) LoginStaff(ctx context.Context, kind token.Kind, email, password string) (TokenPair, error) {
	if !isStaffKind(kind) {
		return TokenPair{}, fmt.Errorf("auth: kind %q has no password login: %w", kind, httpx.ErrUnauthenticated)
	}
	account, err := s.repo.FindStaffByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("auth: bad credentials: %w", httpx.ErrUnauthenticated)
		}
		return TokenPair{}, err
	}
	if account.Archived {
		return TokenPair{}, fmt.Errorf("auth: bad credentials: %w", httpx.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, fmt.Errorf("auth: bad credentials: %w", httpx.ErrUnauthenticated)
	}
	return s.issuePair(token.Claims{ID: account.ID.String()}, kind)
}

// RefreshStaff exchanges a valid refresh token for a fresh pair.
func (s *Service) RefreshStaff(ctx context.Context, kind token.Kind, refresh string) (TokenPair, error) {
	if !isStaffKind(kind) {
		return TokenPair{}, fmt.Errorf("auth: kind %q has no staff refresh: %w", kind, httpx.ErrUnauthenticated)
	}
	claims, err := s.codec.Verify(refresh, kind, token.ClassRefresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
	}
	account, err := s.repo.FindStaffByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
		}
		return TokenPair{}, err
	}
	if account.Archived {
		return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
	}
	return s.issuePair(token.Claims{ID: account.ID.String()}, kind)
}

// LogoutStaff records the presented access token as blocked, forcing the
// session out without a server-side session store.
func (s *Service) LogoutStaff(ctx context.Context, kind token.Kind, id uuid.UUID, accessToken string) error {
	if !isStaffKind(kind) {
		return fmt.Errorf("auth: kind %q has no staff logout: %w", kind, httpx.ErrUnauthenticated)
	}
	return s.repo.SetBlockedToken(ctx, kind, id, accessToken)
}

// RequestOTP issues a one-time code to the phone. An unknown phone still
// gets a code so the endpoint does not leak which numbers are registered;
// verification creates the client on first use.
func (s *Service) RequestOTP(ctx context.Context, phone string) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.otp.Put(ctx, phone, code); err != nil {
		return err
	}
	return s.sms.SendCode(ctx, phone, code)
}

// VerifyOTP exchanges a valid code for a client token pair, creating the
// client record on first login. The current-flat claim is seeded from the
// client's first active membership, if any.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (TokenPair, error) {
	if err := s.otp.Consume(ctx, phone, code); err != nil {
		if errors.Is(err, ErrOTPMismatch) {
			return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
		}
		return TokenPair{}, err
	}

	client, err := s.repo.FindClientByPhone(ctx, phone)
	if errors.Is(err, httpx.ErrNotFound) {
		client, err = s.repo.CreateClient(ctx, phone)
	}
	if err != nil {
		return TokenPair{}, err
	}
	if client.Archived {
		return TokenPair{}, fmt.Errorf("auth: client archived: %w", httpx.ErrForbidden)
	}

	claims := token.Claims{ID: client.ID.String()}
	if flat, err := s.repo.FirstClientFlat(ctx, client.ID); err == nil && flat != nil {
		claims.CurrentFlat = flat.FlatID.String()
		claims.CurrentApartment = flat.ApartmentID.String()
	} else if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return TokenPair{}, err
	}

	pair, err := s.issuePair(claims, token.KindClient)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.storeClientToken(ctx, client, pair.Refresh, ""); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// RefreshClient rotates a client refresh token. The presented token must be
// in the client's stored list; rotation replaces it with the new one.
func (s *Service) RefreshClient(ctx context.Context, refresh string) (TokenPair, error) {
	claims, err := s.codec.Verify(refresh, token.KindClient, token.ClassRefresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
	}
	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
		}
		return TokenPair{}, err
	}
	if client.Archived {
		return TokenPair{}, fmt.Errorf("auth: %w", httpx.ErrForbidden)
	}
	if !containsToken(client.Tokens, refresh) {
		return TokenPair{}, fmt.Errorf("auth: refresh token not in session list: %w", httpx.ErrUnauthenticated)
	}

	pair, err := s.issuePair(token.Claims{
		ID:               claims.ID,
		CurrentFlat:      claims.CurrentFlat,
		CurrentApartment: claims.CurrentApartment,
	}, token.KindClient)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.storeClientToken(ctx, client, pair.Refresh, refresh); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// LogoutClient drops one refresh token from the client's session list.
func (s *Service) LogoutClient(ctx context.Context, id uuid.UUID, refresh string) error {
	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
		}
		return err
	}
	kept := client.Tokens[:0:0]
	for _, t := range client.Tokens {
		if t != refresh {
			kept = append(kept, t)
		}
	}
	return s.repo.SetClientTokens(ctx, id, kept)
}

// RequestPasswordReset emails a staff account a reset token salted with a
// fragment of the current password hash.
func (s *Service) RequestPasswordReset(ctx context.Context, kind token.Kind, email string) error {
	if !isStaffKind(kind) {
		return fmt.Errorf("auth: kind %q has no password reset: %w", kind, httpx.ErrUnauthenticated)
	}
	account, err := s.repo.FindStaffByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			// Do not reveal whether the address exists.
			return nil
		}
		return err
	}
	reset, err := s.codec.IssueReset(token.Claims{ID: account.ID.String()}, kind, hashFragment(account.PasswordHash), resetTokenTTL)
	if err != nil {
		return err
	}
	return s.mail.EnqueueEmail(ctx, account.Email, "Password reset",
		"Use this code to set a new password: "+reset)
}

// ConfirmPasswordReset verifies a reset token against the account's current
// hash and stores the new password. Using the token after the password
// changed fails verification because the salt moved.
func (s *Service) ConfirmPasswordReset(ctx context.Context, kind token.Kind, email, resetToken, newPassword string) error {
	if !isStaffKind(kind) {
		return fmt.Errorf("auth: kind %q has no password reset: %w", kind, httpx.ErrUnauthenticated)
	}
	account, err := s.repo.FindStaffByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return fmt.Errorf("auth: %w", httpx.ErrUnauthenticated)
		}
		return err
	}
	claims, err := s.codec.VerifyReset(resetToken, kind, hashFragment(account.PasswordHash))
	if err != nil || claims.ID != account.ID.String() {
		return fmt.Errorf("auth: bad reset token: %w", httpx.ErrUnauthenticated)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.SetPassword(ctx, kind, account.ID, string(hash))
}

func (s *Service) issuePair(claims token.Claims, kind token.Kind) (TokenPair, error) {
	access, err := s.codec.Issue(claims, kind, token.ClassAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.Issue(claims, kind, token.ClassRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// storeClientToken appends the fresh refresh token to the client's list,
// dropping replaced (on rotation) and evicting the oldest past the cap.
// Concurrent logins racing here is accepted: last writer wins, the list
// stays bounded by count either way.
func (s *Service) storeClientToken(ctx context.Context, client *principal.Client, fresh, replaced string) error {
	tokens := client.Tokens[:0:0]
	for _, t := range client.Tokens {
		if t != replaced {
			tokens = append(tokens, t)
		}
	}
	tokens = append(tokens, fresh)
	if over := len(tokens) - s.tokenCap; over > 0 {
		tokens = tokens[over:]
	}
	return s.repo.SetClientTokens(ctx, client.ID, tokens)
}

func containsToken(tokens []string, t string) bool {
	for _, held := range tokens {
		if held == t {
			return true
		}
	}
	return false
}

func hashFragment(hash string) string {
	if len(hash) <= saltFragmentLen {
		return hash
	}
	return hash[len(hash)-saltFragmentLen:]
}
