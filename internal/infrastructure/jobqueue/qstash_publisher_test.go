package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/platform/resilience"
	"github.com/stretchr/testify/require"
)

func TestQStashPublisher_EnqueueSetsUpstashHeaders(t *testing.T) {
	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          server.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://league-scoring.example.com/",
		Retries:          2,
		InternalJobToken: "internal",
	}, logging.NewNop())

	err := publisher.Enqueue(context.Background(), "v1/internal/jobs/fantasy-recalculate",
		map[string]any{"fixture_id": "fx-1"}, 1500*time.Millisecond, " fantasy-recalc:fx-1 ")
	require.NoError(t, err)

	require.Equal(t, "/v2/publish/https://league-scoring.example.com/v1/internal/jobs/fantasy-recalculate", gotPath)
	require.Equal(t, "Bearer qstash-token", gotHeaders.Get("Authorization"))
	require.Equal(t, "2", gotHeaders.Get("Upstash-Retries"))
	require.Equal(t, "2s", gotHeaders.Get("Upstash-Delay"))
	require.Equal(t, "fantasy-recalc:fx-1", gotHeaders.Get("Upstash-Deduplication-Id"))
	require.Equal(t, "internal", gotHeaders.Get("Upstash-Forward-X-Internal-Job-Token"))
	require.JSONEq(t, `{"fixture_id":"fx-1"}`, gotBody)
}

func TestQStashPublisher_OpensCircuitOnTransientFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       server.URL,
		Token:         "t",
		TargetBaseURL: "https://league-scoring.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	for i := 0; i < 2; i++ {
		err := publisher.Enqueue(context.Background(), "/jobs/x", nil, 0, "")
		require.Error(t, err)
		require.True(t, errors.Is(err, errQStashTransient), "expected transient error, got %v", err)
	}

	err := publisher.Enqueue(context.Background(), "/jobs/x", nil, 0, "")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	require.Equal(t, 2, calls)
}

func TestQStashPublisher_RejectsInvalidTarget(t *testing.T) {
	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       "https://qstash.upstash.io",
		TargetBaseURL: "ftp://example.com",
	}, logging.NewNop())

	err := publisher.Enqueue(context.Background(), "/jobs/x", nil, 0, "")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "QSTASH_TARGET_BASE_URL"), "unexpected error: %v", err)
}
