package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a connection pool and verifies it.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

// SaveAlert archives a triggered alert.
func (r *PostgresRepository) SaveAlert(ctx context.Context, a signal.TriggeredAlert) error {
	query := `
		INSERT INTO alerts (id, rule_id, priority, signal_fingerprint, signal_kind, signal_source, fired_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.RuleID, string(a.Priority),
		a.Signal.Fingerprint, a.Signal.Kind, a.Signal.Source,
		a.FiredAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive alert: %w", err)
	}
	return nil
}

// SaveComposite archives a composite emission.
func (r *PostgresRepository) SaveComposite(ctx context.Context, c signal.Composite) error {
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal composite metadata: %w", err)
	}
	query := `
		INSERT INTO composites (id, pattern, confidence, contributing_sources, produced_at, metadata, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		c.ID, c.Pattern, c.Confidence, c.ContributingSources,
		c.ProducedAt, metadata, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive composite: %w", err)
	}
	return nil
}

// GetAlert retrieves one archived alert by id.
func (r *PostgresRepository) GetAlert(ctx context.Context, id string) (*ArchivedAlert, error) {
	query := `
		SELECT id, rule_id, priority, signal_fingerprint, signal_kind, signal_source, fired_at, archived_at
		FROM alerts
		WHERE id = $1
	`
	a := &ArchivedAlert{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.RuleID, &a.Priority,
		&a.SignalFingerprint, &a.SignalKind, &a.SignalSource,
		&a.FiredAt, &a.ArchivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return a, nil
}

// ListAlerts retrieves a filtered page of archived alerts, newest first.
func (r *PostgresRepository) ListAlerts(ctx context.Context, req ListAlertsRequest) ([]*ArchivedAlert, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}

	whereClause := "WHERE 1=1"
	args := []any{}
	argPos := 1
	if req.RuleID != "" {
		whereClause += fmt.Sprintf(" AND rule_id = $%d", argPos)
		args = append(args, req.RuleID)
		argPos++
	}
	if req.Priority != "" {
		whereClause += fmt.Sprintf(" AND priority = $%d", argPos)
		args = append(args, string(req.Priority))
		argPos++
	}

	countQuery := "SELECT COUNT(*) FROM alerts " + whereClause
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, rule_id, priority, signal_fingerprint, signal_kind, signal_source, fired_at, archived_at
		FROM alerts
		%s
		ORDER BY fired_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*ArchivedAlert
	for rows.Next() {
		a := &ArchivedAlert{}
		if err := rows.Scan(
			&a.ID, &a.RuleID, &a.Priority,
			&a.SignalFingerprint, &a.SignalKind, &a.SignalSource,
			&a.FiredAt, &a.ArchivedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}
