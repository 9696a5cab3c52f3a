// Package submit posts a built report to the client's endpoint. There is
// exactly one attempt per call; retrying is the user's decision.
package submit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/log"
	"github.com/dharsanguruparan/reporte/internal/payload"
)

const (
	// DefaultTimeout bounds the whole exchange, body upload included.
	DefaultTimeout = 60 * time.Second

	// MaxResponseBytes caps how much of the endpoint's answer is kept.
	MaxResponseBytes = 4 << 20
)

// Result is the outcome of one submission attempt. Either the endpoint
// answered (Sent, with its status and body verbatim) or the transport failed
// (Failure describes why). A non-2xx answer is still Sent.
type Result struct {
	Sent       bool   `json:"sent"`
	StatusCode int    `json:"status,omitempty"`
	Body       string `json:"body,omitempty"`
	// Truncated is set when Body holds only the first MaxResponseBytes.
	Truncated bool   `json:"truncated,omitempty"`
	Failure   string `json:"error,omitempty"`
	RequestID string `json:"requestId"`
}

// Summary is the one-line message shown to the user.
func (r Result) Summary() string {
	if !r.Sent {
		return "Error al enviar el reporte: " + r.Failure
	}
	return fmt.Sprintf("Envío completado. Código de estado: %d", r.StatusCode)
}

// Client sends submissions with a fixed upper bound on wait time.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// New builds a Client. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Send posts sub to its target. The returned error is non-nil only when the
// request could not be attempted at all (bad target, encoding failure);
// everything that happens on the wire is reported through Result.
func (c *Client) Send(ctx context.Context, sub *payload.Submission) (Result, error) {
	if err := config.ValidateTarget(sub.Target); err != nil {
		return Result{}, payload.ValidationErrors{err.Error() + "."}
	}
	body, err := sub.Encode()
	if err != nil {
		return Result{}, fmt.Errorf("encode submission: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Target, body.Data)
	if err != nil {
		return Result{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", body.ContentType)
	req.Header.Set("X-Request-Id", requestID)

	entry := log.WithFields(log.Fields{
		"request_id": requestID,
		"target":     req.URL.Host,
		"images":     len(sub.Images),
	})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Warn("submission failed")
		return Result{RequestID: requestID, Failure: err.Error()}, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		entry.WithError(err).Warn("reading submission response failed")
		return Result{RequestID: requestID, Failure: fmt.Sprintf("leer respuesta: %v", err)}, nil
	}
	truncated := len(data) > MaxResponseBytes
	if truncated {
		data = data[:MaxResponseBytes]
	}
	entry.WithFields(log.Fields{
		"status":    resp.StatusCode,
		"duration":  time.Since(start).String(),
		"truncated": truncated,
	}).Info("submission sent")

	return Result{
		Sent:       true,
		StatusCode: resp.StatusCode,
		Body:       string(data),
		Truncated:  truncated,
		RequestID:  requestID,
	}, nil
}
