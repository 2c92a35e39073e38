package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/lexora-app/lexora/internal/jobs"
)

// TaskGrantAudit sweeps the grant table for malformed rows. The engine
// skips such rows at decision time; the audit surfaces them so an operator
// can repair the role instead of silently losing the capability.
const TaskGrantAudit = "authz:grant_audit"

// GrantAuditPayload carries scheduling metadata.
type GrantAuditPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewGrantAuditTask constructs the nightly audit task.
func NewGrantAuditTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(GrantAuditPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGrantAudit, body, asynq.Queue(QueueDefault)), nil
}

// NewGrantAuditHandler builds the worker-side handler.
func NewGrantAuditHandler(logger *slog.Logger, pool *pgxpool.Pool, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload GrantAuditPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskGrantAudit)
		rows, err := pool.Query(ctx, `
			SELECT id, role_id, entity, action, filter_name
			FROM role_grants
			WHERE (filter_int_value IS NULL) = (filter_text_value IS NULL)`)
		if err != nil {
			return tracker.End(err)
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var id, roleID int64
			var entity, action, filterName string
			if err := rows.Scan(&id, &roleID, &entity, &action, &filterName); err != nil {
				return tracker.End(err)
			}
			count++
			logger.Warn("malformed grant row",
				slog.Int64("grant_id", id),
				slog.Int64("role_id", roleID),
				slog.String("entity", entity),
				slog.String("action", action),
				slog.String("filter_name", filterName))
		}
		if err := rows.Err(); err != nil {
			return tracker.End(err)
		}
		metrics.AddMalformedGrants(count)
		logger.Info("grant audit finished", slog.Int("malformed", count))
		return tracker.End(nil)
	}
}
