// Package repository persists triggered alerts and composite emissions for
// later review. The engine's in-memory state stays restart-volatile; the
// archive is a downstream sink.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// ErrAlertNotFound is returned when an alert id does not exist.
var ErrAlertNotFound = errors.New("alert not found")

// ArchivedAlert is a stored triggered alert.
type ArchivedAlert struct {
	ID                string          `json:"id"`
	RuleID            string          `json:"rule_id"`
	Priority          signal.Priority `json:"priority"`
	SignalFingerprint string          `json:"signal_fingerprint"`
	SignalKind        string          `json:"signal_kind"`
	SignalSource      string          `json:"signal_source"`
	FiredAt           time.Time       `json:"fired_at"`
	ArchivedAt        time.Time       `json:"archived_at"`
}

// ListAlertsRequest filters and pages the alert archive.
type ListAlertsRequest struct {
	RuleID   string
	Priority signal.Priority
	Limit    int
	Offset   int
}

// Repository is the alert archive contract.
type Repository interface {
	SaveAlert(ctx context.Context, a signal.TriggeredAlert) error
	SaveComposite(ctx context.Context, c signal.Composite) error
	GetAlert(ctx context.Context, id string) (*ArchivedAlert, error)
	ListAlerts(ctx context.Context, req ListAlertsRequest) ([]*ArchivedAlert, int, error)
	Close()
}
