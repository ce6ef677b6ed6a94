package topology

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryFixture = `{
	"Nebraska": {
		"Resources": {
			"Resource": [
				{"WLCGInformation": {"HEPScore23Percentage": "30"}},
				{"WLCGInformation": {"HEPScore23Percentage": 50}},
				{"WLCGInformation": {}}
			]
		}
	},
	"Clemson-Palmetto": {
		"Resources": {
			"Resource": [
				{"WLCGInformation": {}}
			]
		}
	}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func summaryServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(summaryFixture))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestPortion(t *testing.T) {
	t.Parallel()

	t.Run("mean_of_present_percentages", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64

		srv := summaryServer(t, &calls)
		client := NewClient(srv.URL, srv.Client(), testLogger())

		// (30 + 50) / 2 = 40%, as a fraction.
		portion, err := client.Portion(context.Background(), "Nebraska")
		require.NoError(t, err)
		assert.InDelta(t, 0.4, portion, 1e-12)
	})

	t.Run("no_percentages_is_zero", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64

		srv := summaryServer(t, &calls)
		client := NewClient(srv.URL, srv.Client(), testLogger())

		portion, err := client.Portion(context.Background(), "Clemson-Palmetto")
		require.NoError(t, err)
		assert.InDelta(t, 0.0, portion, 0)
	})

	t.Run("unknown_group_is_zero", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64

		srv := summaryServer(t, &calls)
		client := NewClient(srv.URL, srv.Client(), testLogger())

		portion, err := client.Portion(context.Background(), "Nowhere")
		require.NoError(t, err)
		assert.InDelta(t, 0.0, portion, 0)
	})

	t.Run("fetch_is_memoized", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64

		srv := summaryServer(t, &calls)
		client := NewClient(srv.URL, srv.Client(), testLogger())

		first, err := client.Portion(context.Background(), "Nebraska")
		require.NoError(t, err)

		second, err := client.Portion(context.Background(), "Nebraska")
		require.NoError(t, err)

		assert.InDelta(t, first, second, 0)
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("non_200_is_fatal", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		client := NewClient(srv.URL, srv.Client(), testLogger())

		_, err := client.Portion(context.Background(), "Nebraska")
		require.ErrorIs(t, err, ErrStatus)

		// No partial cache: the next call retries the fetch and fails again.
		_, err = client.Portion(context.Background(), "Nebraska")
		assert.ErrorIs(t, err, ErrStatus)
	})

	t.Run("malformed_payload_fails_schema", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Nebraska": {"Resources": {}}}`))
		}))
		t.Cleanup(srv.Close)

		client := NewClient(srv.URL, srv.Client(), testLogger())

		_, err := client.Portion(context.Background(), "Nebraska")
		assert.ErrorIs(t, err, ErrSchema)
	})
}
