// Package notify announces finished report runs to downstream consumers.
package notify

import (
	"context"
	"time"
)

// RunSummary is published once a report run completes.
type RunSummary struct {
	MessageID  string    `json:"message_id"`
	RunID      string    `json:"run_id"`
	Report     string    `json:"report"`
	Day        string    `json:"day"`
	Figures    int       `json:"figures"`
	Failures   []string  `json:"failures,omitempty"`
	Sent       bool      `json:"sent"`
	Attachment string    `json:"attachment,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier publishes run summaries.
type Notifier interface {
	Notify(ctx context.Context, s RunSummary) error
}

// Nop discards summaries.
type Nop struct{}

func (Nop) Notify(context.Context, RunSummary) error { return nil }
