package relay

import (
	"context"
	"strings"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/infrastructure/resilience"
)

// Client delivers notification emails through the company mail relay,
// a thin HTTP service in front of the actual SMTP provider.
type Client struct {
	transport *transport
	from      string
	executor  *resilience.Executor
}

func New(baseURL, from string) *Client {
	return &Client{
		transport: newTransport(strings.TrimRight(baseURL, "/"), 30*time.Second),
		from:      from,
	}
}

// WithExecutor routes sends through the retry/breaker executor.
func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *Client) Send(ctx context.Context, msg domain.Email) error {
	if strings.TrimSpace(msg.To) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "mail send", errMissingRecipient)
	}

	payload := sendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
	}
	call := func(ctx context.Context) error {
		return c.transport.postJSON(ctx, "/api/v1/send", payload, "send")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "mail.send", call, classifyRelayError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded("mail send", err)
}
