package processing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrelab/tyredeg/pkg/openf1"
)

// fakeOpenF1 serves one practice session with a single 20 lap stint on
// softs. Lap times rise mildly with tyre age.
func fakeOpenF1(t *testing.T) *httptest.Server {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		_, _ = w.Write(data)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions":
			writeJSON(w, []map[string]any{{
				"session_key":  9222,
				"session_type": "Practice",
				"country_name": "Hungary",
				"year":         2024,
			}})
		case "/stints":
			writeJSON(w, []map[string]any{{
				"session_key":       9222,
				"driver_number":     44,
				"compound":          "SOFT",
				"lap_start":         10,
				"lap_end":           30,
				"tyre_age_at_start": 0,
				"stint_number":      1,
			}})
		case "/laps":
			laps := make([]map[string]any, 0, 20)
			for ln := 10; ln < 30; ln++ {
				total := 90.0 + 0.1*float64(ln-10)
				laps = append(laps, map[string]any{
					"session_key":       9222,
					"driver_number":     44,
					"lap_number":        ln,
					"duration_sector_1": total * 0.3,
					"duration_sector_2": total * 0.4,
					"duration_sector_3": total * 0.3,
					"is_pit_out_lap":    false,
				})
			}
			writeJSON(w, laps)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestProcessor(t *testing.T, url string) *Processor {
	t.Helper()
	client := openf1.NewClient(
		openf1.WithBaseURL(url),
		openf1.WithCacheDir(t.TempDir()))
	return NewProcessor(WithClient(client))
}

func TestProcessEvent(t *testing.T) {
	server := fakeOpenF1(t)
	defer server.Close()
	proc := newTestProcessor(t, server.URL)

	results, err := proc.ProcessEvent(context.Background(),
		"Hungary", "Practice", 2024, []string{"SOFT", "MEDIUM"})
	require.NoError(t, err)
	// MEDIUM has no stints and is skipped, the run continues
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "SOFT", res.Compound)
	// the stint opening lap is dropped, the remaining 19 survive
	require.Len(t, res.Rows, 19)
	require.Len(t, res.Points, 19)

	assert.Equal(t, 1, res.Points[0].TyreAge)
	assert.Equal(t, 19, res.Points[len(res.Points)-1].TyreAge)
	for _, p := range res.Points {
		assert.Equal(t, 1, p.Count)
	}
	// fuel correction: start fuel 22 laps, one lap done on the first row
	first := res.Rows[0]
	assert.Equal(t, 22, first.StartFuelLaps)
	assert.Equal(t, 21, first.RemainingFuelLaps)
	assert.InDelta(t, 90.1-21*0.045, first.CorrectedZero, 1e-6)

	assert.True(t, res.Fit.Converged)
	// fitted curve stays close to the aggregated means
	for _, p := range res.Points {
		assert.InDelta(t, p.MeanTime, res.Fit.Eval(float64(p.TyreAge)), 0.5)
	}
}

func TestProcessEventFetchErrorAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
	defer server.Close()
	proc := newTestProcessor(t, server.URL)

	_, err := proc.ProcessEvent(context.Background(),
		"Hungary", "Practice", 2024, []string{"SOFT"})
	assert.Error(t, err)
}

func TestProcessEventNoCompoundData(t *testing.T) {
	server := fakeOpenF1(t)
	defer server.Close()
	proc := newTestProcessor(t, server.URL)

	results, err := proc.ProcessEvent(context.Background(),
		"Hungary", "Practice", 2024, []string{"MEDIUM", "HARD"})
	require.NoError(t, err)
	assert.Empty(t, results)
}
