package acs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
)

const (
	defaultAPIVersion = "2025-09-01"
	// maxResponseBody bounds the error body captured for diagnostics.
	maxResponseBody = 64 << 10
)

var _ core.EmailSender = (*Client)(nil)

// ClientOptions configures NewClient.
type ClientOptions struct {
	Endpoint   string
	Sender     string
	Subject    string
	ReplyTo    string
	APIVersion string
	Timeout    time.Duration
	Signer     *Signer
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client sends one message per call to the ACS emails:send endpoint. It never retries.
type Client struct {
	sendURL string
	sender  string
	subject string
	replyTo string
	signer  *Signer
	http    *http.Client
}

// NewClient builds a Client. Endpoint and Sender are required.
func NewClient(opts ClientOptions) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("acs endpoint is required")
	}
	if strings.TrimSpace(opts.Sender) == "" {
		return nil, errors.New("acs sender address is required")
	}
	if opts.Signer == nil {
		return nil, errors.New("acs signer is required")
	}

	version := strings.TrimSpace(opts.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}
	sendURL, err := url.Parse(endpoint + "/emails:send")
	if err != nil {
		return nil, fmt.Errorf("invalid acs endpoint %q: %w", opts.Endpoint, err)
	}
	q := sendURL.Query()
	q.Set("api-version", version)
	sendURL.RawQuery = q.Encode()

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		sendURL: sendURL.String(),
		sender:  strings.TrimSpace(opts.Sender),
		subject: opts.Subject,
		replyTo: strings.TrimSpace(opts.ReplyTo),
		signer:  opts.Signer,
		http:    hc,
	}, nil
}

// Message builds the send payload for one recipient.
func (c *Client) Message(to, html string) model.EmailMessage {
	msg := model.EmailMessage{
		SenderAddress: c.sender,
		Recipients:    model.EmailRecipients{To: []model.EmailAddress{{Address: to}}},
		Content:       model.EmailContent{Subject: c.subject, HTML: html},
	}
	if c.replyTo != "" {
		msg.ReplyTo = []model.EmailAddress{{Address: c.replyTo}}
	}
	return msg
}

// Send signs and posts the message. Non-2xx responses yield *errors.DeliveryError.
func (c *Client) Send(ctx context.Context, req core.EmailSendRequest) error {
	if strings.TrimSpace(req.To) == "" {
		return errors.New("recipient address is required")
	}

	body, err := json.Marshal(c.Message(req.To, req.HTML))
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	signed, err := c.signer.Sign(http.MethodPost, c.sendURL, body, req.AccessKey)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-ms-date", signed.Timestamp)
	httpReq.Header.Set("x-ms-content-sha256", signed.ContentHash)
	httpReq.Header.Set("Authorization", signed.Authorization)
	// Go writes the Host header from req.Host; it must match the signed host.
	httpReq.Host = httpReq.URL.Host

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &apperrors.TransportError{Op: "send email", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil
	}

	// One extra byte tells a body of exactly the limit apart from a longer one.
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	truncated := len(raw) > maxResponseBody
	if truncated {
		raw = raw[:maxResponseBody]
	}
	if readErr != nil {
		raw = []byte(fmt.Sprintf("<read body: %v>", readErr))
		truncated = false
	}
	return &apperrors.DeliveryError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(raw),
		Truncated:  truncated,
	}
}
