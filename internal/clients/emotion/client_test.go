package emotion_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"queens/internal/apperrors"
	"queens/internal/clients/emotion"
	"queens/internal/config"
	"queens/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scores = `[[{"label":"joy","score":0.81},{"label":"neutral","score":0.12},{"label":"sadness","score":0.02}]]`

func newClient(srv *httptest.Server, retries int) *emotion.Client {
	return emotion.NewClient(srv.Client(), config.HuggingFaceConfig{
		APIToken:   "hf-token",
		URL:        srv.URL,
		MaxRetries: retries,
	}, logger.Discard()).WithInitialWait(time.Millisecond)
}

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		w.Write([]byte(scores))
	}))
	defer srv.Close()

	analysis, err := newClient(srv, 3).Analyze(context.Background(), "what a lovely day")
	require.NoError(t, err)
	assert.Equal(t, "joy", analysis.DominantEmotion)
	assert.Len(t, analysis.Emotions, 3)
	assert.InDelta(t, 0.81, analysis.Emotions["joy"], 1e-9)
	assert.False(t, analysis.Timestamp.IsZero())
}

func TestAnalyze_RetriesWhileModelLoads(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model is currently loading","estimated_time":12.5}`))
			return
		}
		w.Write([]byte(scores))
	}))
	defer srv.Close()

	analysis, err := newClient(srv, 3).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "joy", analysis.DominantEmotion)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAnalyze_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading","estimated_time":12.5}`))
	}))
	defer srv.Close()

	_, err := newClient(srv, 3).Analyze(context.Background(), "text")
	assert.True(t, apperrors.Is(err, apperrors.KindCollaboratorUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAnalyze_OtherErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv, 3).Analyze(context.Background(), "text")
	assert.True(t, apperrors.Is(err, apperrors.KindCollaboratorUnavailable))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAnalyze_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newClient(srv, 1).Analyze(context.Background(), "text")
	assert.True(t, apperrors.Is(err, apperrors.KindCollaboratorUnavailable))
}
