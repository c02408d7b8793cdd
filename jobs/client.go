package jobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/societydesk/societydesk/internal/notify"
)

// Client submits jobs to the queue. It implements notify.Dispatcher so
// feature services enqueue fan-outs without knowing about the worker.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

var _ notify.Dispatcher = (*Client)(nil)

// Send enqueues a push fan-out task.
func (c *Client) Send(ctx context.Context, payload notify.Payload, tokens []string, recipients []uuid.UUID) error {
	task, err := NewPushDispatchTask(PushDispatchPayload{
		Payload:    payload,
		Tokens:     tokens,
		Recipients: recipients,
	})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// EnqueueEmail queues a transactional email, satisfying auth.EmailEnqueuer.
func (c *Client) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	return c.EnqueueSendEmail(ctx, SendEmailPayload{To: to, Subject: subject, Body: body})
}

// EnqueueSendEmail enqueues a send-email task.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) error {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
