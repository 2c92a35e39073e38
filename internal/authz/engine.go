package authz

import "log/slog"

// DecisionRecorder receives one event per composed decision, keyed by entity,
// action and outcome ("allowed", "denied" or "query").
type DecisionRecorder interface {
	RecordDecision(entity, action, outcome string)
}

// EngineConfig collects the engine's dependencies. KernelRealmID must be the
// id of the operating company's realm; it is configuration, never a
// process-wide constant, so tests can fabricate realm ids freely.
type EngineConfig struct {
	Store         Store
	KernelRealmID int64
	Logger        *slog.Logger
	Recorder      DecisionRecorder
}

// Engine computes record-level access decisions. It is stateless between
// requests: every decision reads the permission tables fresh, so revoked
// grants take effect on the next request.
type Engine struct {
	store         Store
	kernelRealmID int64
	logger        *slog.Logger
	recorder      DecisionRecorder
}

// NewEngine constructs the engine.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:         cfg.Store,
		kernelRealmID: cfg.KernelRealmID,
		logger:        logger,
		recorder:      cfg.Recorder,
	}
}

// validGrants drops malformed grant rows with a warning. One corrupt grant
// contributes nothing; it never aborts the decision and never expands access.
func (e *Engine) validGrants(grants []Grant) []Grant {
	valid := grants[:0:0]
	for _, g := range grants {
		if !g.wellFormed() {
			e.logger.Warn("skipping malformed grant",
				slog.Int64("role_id", g.RoleID),
				slog.String("entity", g.Entity),
				slog.String("action", string(g.Action)),
				slog.String("filter", g.FilterName))
			continue
		}
		valid = append(valid, g)
	}
	return valid
}

func (e *Engine) record(entity string, action Action, outcome string) {
	if e.recorder != nil {
		e.recorder.RecordDecision(entity, string(action), outcome)
	}
}
