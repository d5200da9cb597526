// Package service composes the engine with its downstream sinks: the alert
// archive and the message bus.
package service

import (
	"context"

	"github.com/hawkline-systems/hawkline/internal/engine"
	"github.com/hawkline-systems/hawkline/internal/logging"
	"github.com/hawkline-systems/hawkline/internal/repository"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Publisher is the message-bus contract the service needs. Implemented by
// messaging/nats.Publisher.
type Publisher interface {
	PublishComposite(c signal.Composite) error
	PublishAlert(a signal.TriggeredAlert) error
}

// Service wraps the engine and fans results out to the optional archive
// and publisher. Either sink may be nil.
type Service struct {
	engine    *engine.Engine
	repo      repository.Repository
	publisher Publisher
	log       *logging.Logger
}

// New creates a service. repo and publisher may be nil when those sinks
// are disabled.
func New(eng *engine.Engine, repo repository.Repository, publisher Publisher, log *logging.Logger) *Service {
	return &Service{engine: eng, repo: repo, publisher: publisher, log: log}
}

// Engine exposes the underlying engine for rule management and queries.
func (s *Service) Engine() *engine.Engine { return s.engine }

// Ingest feeds a signal through the engine and distributes the results.
// Sink failures are logged and do not fail the ingest: the caller already
// holds the authoritative result.
func (s *Service) Ingest(ctx context.Context, sig signal.Signal) (engine.IngestResult, error) {
	result, err := s.engine.Ingest(ctx, sig)
	if err != nil {
		return engine.IngestResult{}, err
	}

	for _, c := range result.Composites {
		if s.repo != nil {
			if err := s.repo.SaveComposite(ctx, c); err != nil {
				s.log.ErrorContext(ctx, "failed to archive composite", "pattern", c.Pattern, "error", err)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishComposite(c); err != nil {
				s.log.ErrorContext(ctx, "failed to publish composite", "pattern", c.Pattern, "error", err)
			}
		}
	}
	for _, a := range result.Alerts {
		if s.repo != nil {
			if err := s.repo.SaveAlert(ctx, a); err != nil {
				s.log.ErrorContext(ctx, "failed to archive alert", "rule", a.RuleID, "error", err)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishAlert(a); err != nil {
				s.log.ErrorContext(ctx, "failed to publish alert", "rule", a.RuleID, "error", err)
			}
		}
	}

	return result, nil
}

// ListArchivedAlerts pages the alert archive. Returns repository.ErrAlertNotFound
// style errors unchanged; callers translate them to HTTP.
func (s *Service) ListArchivedAlerts(ctx context.Context, req repository.ListAlertsRequest) ([]*repository.ArchivedAlert, int, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	return s.repo.ListAlerts(ctx, req)
}
