package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/decks"
	jobmetrics "github.com/lexora-app/lexora/internal/jobs"
	"github.com/lexora-app/lexora/internal/platform/cache"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDeckBulkArchive archives a batch of decks on behalf of a user.
	TaskDeckBulkArchive = "decks:bulk_archive"
)

// DeckBulkArchivePayload identifies the acting user and the candidate decks.
// The permission check runs in the worker with the user's grant state at
// execution time, not at enqueue time.
type DeckBulkArchivePayload struct {
	JobID   string  `json:"job_id"`
	UserID  int64   `json:"user_id"`
	DeckIDs []int64 `json:"deck_ids"`
}

// storedOutcome binds a finished bulk outcome to the user who enqueued the
// job, so polling is scoped to the enqueuer.
type storedOutcome struct {
	UserID  int64             `json:"user_id"`
	Outcome authz.BulkOutcome `json:"outcome"`
}

// NewDeckBulkArchiveTask constructs an Asynq task and its job id.
func NewDeckBulkArchiveTask(userID int64, ids []int64) (*asynq.Task, string, error) {
	jobID := uuid.NewString()
	body, err := json.Marshal(DeckBulkArchivePayload{JobID: jobID, UserID: userID, DeckIDs: ids})
	if err != nil {
		return nil, "", err
	}
	return asynq.NewTask(TaskDeckBulkArchive, body, asynq.Queue(QueueDefault)), jobID, nil
}

// NewDeckBulkArchiveHandler builds the worker-side handler. It re-resolves
// the acting user's identity so revocations between enqueue and execution
// take effect. The outcome store is optional; with it, the partition is
// published for polling under the job id.
func NewDeckBulkArchiveHandler(logger *slog.Logger, store authz.Store, svc *decks.Service, outcomes *cache.OutcomeStore, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DeckBulkArchivePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskDeckBulkArchive)
		id, err := store.Identity(ctx, payload.UserID)
		if err != nil {
			logger.Error("bulk archive identity", slog.String("job_id", payload.JobID), slog.Any("error", err))
			return tracker.End(err)
		}
		outcome, err := svc.BulkArchive(ctx, id, payload.DeckIDs)
		if err != nil {
			return tracker.End(err)
		}
		metrics.AddDeniedRecords(TaskDeckBulkArchive, len(outcome.Denied))
		if outcomes != nil {
			if err := outcomes.Save(ctx, payload.JobID, storedOutcome{UserID: payload.UserID, Outcome: outcome}); err != nil {
				logger.Warn("save bulk outcome", slog.String("job_id", payload.JobID), slog.Any("error", err))
			}
		}
		logger.Info("deck bulk archive finished",
			slog.String("job_id", payload.JobID),
			slog.Int("applied", len(outcome.Applied)),
			slog.Int("denied", len(outcome.Denied)),
			slog.Int("errored", len(outcome.Errored)))
		return tracker.End(nil)
	}
}
