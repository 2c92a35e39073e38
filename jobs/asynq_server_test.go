package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/platform/cache"
	"github.com/lexora-app/lexora/internal/shared"
)

func TestBulkOutcomeScopedToEnqueuer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	outcomes := cache.NewOutcomeStore(client, time.Hour)

	const jobID = "5f0c2a52-1f4e-4f2a-9f6a-1f2b3c4d5e6f"
	require.NoError(t, outcomes.Save(context.Background(), jobID, storedOutcome{
		UserID:  7,
		Outcome: authz.BulkOutcome{Applied: []int64{1}},
	}))

	h := NewHandler(nil, outcomes, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)

	get := func(userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/jobs/bulk/"+jobID, nil)
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), authz.Identity{ID: userID, RealmID: 42}))
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res
	}

	res := get(7)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"applied":[1]`)

	// Knowing the job id is not enough; someone else's job reads as missing.
	require.Equal(t, http.StatusNotFound, get(8).Code)
}
