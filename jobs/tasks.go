// Package jobs holds the background task definitions and the Asynq
// server/client wrappers.
package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/societydesk/societydesk/internal/notify"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypePushDispatch fans a push payload out to device tokens.
	TaskTypePushDispatch = "notify:push"
	// TaskTypeSendEmail sends a transactional email.
	TaskTypeSendEmail = "mail:send"
)

// PushDispatchPayload carries one fan-out request to the worker.
type PushDispatchPayload struct {
	Payload    notify.Payload `json:"payload"`
	Tokens     []string       `json:"tokens,omitempty"`
	Recipients []uuid.UUID    `json:"recipients,omitempty"`
}

// NewPushDispatchTask constructs an Asynq task for a push fan-out.
func NewPushDispatchTask(payload PushDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePushDispatch, data, asynq.MaxRetry(3)), nil
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task for a transactional email.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5)), nil
}
