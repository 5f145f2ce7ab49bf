package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/bracket-machines/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	t.Run("counters and gauges record values", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		s := NewService(reg)

		s.IncMatchesCommitted()
		s.IncMatchesCommitted()
		s.IncCommandsRejected("confirm_match")
		s.SetPendingCommits(3)
		s.SetMachinesInUse(2)

		assert.Equal(t, 2.0, testutil.ToFloat64(s.MatchesCommitted))
		assert.Equal(t, 1.0, testutil.ToFloat64(s.CommandsRejected.WithLabelValues("confirm_match")))
		assert.Equal(t, 3.0, testutil.ToFloat64(s.PendingCommits))
		assert.Equal(t, 2.0, testutil.ToFloat64(s.MachinesInUse))
	})

	t.Run("lifetime counters are mirrored to the store", func(t *testing.T) {
		db, err := database.InitDB(":memory:", "", "")
		require.NoError(t, err)
		defer db.Close()
		counters := New(db)

		s := NewService(prometheus.NewRegistry()).WithStore(counters)
		s.IncMatchesCommitted()
		s.IncRoundsAdvanced()
		s.IncScoresEntered()

		all, err := counters.GetAll()
		require.NoError(t, err)
		assert.Equal(t, map[string]int{KeyMatchesCommitted: 1, KeyRoundsAdvanced: 1}, all)
	})

	t.Run("handler exposes registered metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		s := NewService(reg)
		s.IncRoundsAdvanced()

		rec := httptest.NewRecorder()
		NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "bracket_rounds_advanced_total 1")
	})
}
