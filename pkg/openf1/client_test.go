package openf1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:lll // test data
func newTestServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		switch r.URL.Path {
		case "/sessions":
			_, _ = w.Write([]byte(`[{"session_key":9222,"session_type":"Practice","country_name":"Hungary","year":2024}]`))
		case "/stints":
			_, _ = w.Write([]byte(`[{"driver_number":44,"compound":"SOFT","lap_start":10,"lap_end":17,"tyre_age_at_start":0,"stint_number":1}]`))
		case "/laps":
			_, _ = w.Write([]byte(`[{"driver_number":44,"lap_number":10,"duration_sector_1":30.0,"duration_sector_2":31.0,"duration_sector_3":29.0,"is_pit_out_lap":false}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_fetchAndCache(t *testing.T) {
	calls := 0
	server := newTestServer(t, &calls)
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithCacheDir(t.TempDir()))
	ctx := context.Background()

	sessions, err := client.Sessions(ctx, "Hungary", "Practice", 2024)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 9222, sessions[0].SessionKey)

	stints, err := client.Stints(ctx, sessions[0].SessionKey)
	require.NoError(t, err)
	require.Len(t, stints, 1)

	laps, err := client.Laps(ctx, sessions[0].SessionKey)
	require.NoError(t, err)
	require.Len(t, laps, 1)

	assert.Equal(t, 3, calls)

	// repeated queries are answered from the cache
	_, err = client.Sessions(ctx, "Hungary", "Practice", 2024)
	require.NoError(t, err)
	_, err = client.Stints(ctx, 9222)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestClient_httpErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithCacheDir(t.TempDir()))

	_, err := client.Stints(context.Background(), 9222)
	assert.Error(t, err)
}
