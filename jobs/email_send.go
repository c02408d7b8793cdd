package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"
)

// SMTPConfig carries the relay settings for transactional email.
type SMTPConfig struct {
	Host string
	Port int
	From string
}

// EmailSendJob delivers queued transactional emails over SMTP.
type EmailSendJob struct {
	Config SMTPConfig
	Logger *slog.Logger
}

// NewEmailSendJob initialises the email handler.
func NewEmailSendJob(cfg SMTPConfig, logger *slog.Logger) *EmailSendJob {
	return &EmailSendJob{Config: cfg, Logger: logger}
}

// Handle processes TaskTypeSendEmail tasks.
func (j *EmailSendJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("email send: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	msg := strings.Join([]string{
		"From: " + j.Config.From,
		"To: " + payload.To,
		"Subject: " + payload.Subject,
		"",
		payload.Body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", j.Config.Host, j.Config.Port)
	if err := smtp.SendMail(addr, nil, j.Config.From, []string{payload.To}, []byte(msg)); err != nil {
		if j.Logger != nil {
			j.Logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		}
		return err
	}
	return nil
}
