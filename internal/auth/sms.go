package auth

import (
	"context"
	"log/slog"
)

// LogCodeSender writes OTP codes to the log instead of an SMS relay.
// Development and test wiring only.
type LogCodeSender struct {
	Logger *slog.Logger
}

// SendCode implements CodeSender.
func (s LogCodeSender) SendCode(ctx context.Context, phone, code string) error {
	if s.Logger != nil {
		s.Logger.Info("otp code issued", slog.String("phone", maskPhone(phone)), slog.String("code", code))
	}
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
