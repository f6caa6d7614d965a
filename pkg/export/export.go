// Package export mirrors committed records to an external spreadsheet
// bridge. Mirroring is best effort: the commit path fires it asynchronously
// and a failed mirror never rolls anything back.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// Sink receives one committed record.
type Sink interface {
	Mirror(ctx context.Context, kind record.Kind, ownerID int64, fields record.Fields) error
}

// Noop discards everything. It is the default when no webhook is
// configured.
type Noop struct{}

func (Noop) Mirror(context.Context, record.Kind, int64, record.Fields) error {
	return nil
}

// Webhook posts each committed record as JSON to a configured endpoint.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Webhook{url: url, client: client}
}

type webhookPayload struct {
	ID         string        `json:"id"`
	Kind       record.Kind   `json:"kind"`
	OwnerID    int64         `json:"owner_id"`
	Fields     record.Fields `json:"fields"`
	MirroredAt time.Time     `json:"mirrored_at"`
}

func (w *Webhook) Mirror(ctx context.Context, kind record.Kind, ownerID int64, fields record.Fields) error {
	payload := webhookPayload{
		ID:         uuid.NewString(),
		Kind:       kind,
		OwnerID:    ownerID,
		Fields:     fields,
		MirroredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mirror endpoint returned %s", resp.Status)
	}
	return nil
}
