package canvas_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"queens/internal/apperrors"
	"queens/internal/clients/canvas"
	"queens/internal/config"
	"queens/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

func newClient(srv *httptest.Server) *canvas.Client {
	return canvas.NewClient(srv.Client(), config.CanvasConfig{BaseURL: srv.URL, MaxConcurrency: 2}, logger.Discard()).
		WithClock(func() time.Time { return now })
}

func due(d time.Duration) string {
	return now.Add(d).Format(time.RFC3339)
}

func TestUpcomingAssignments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "active", r.URL.Query().Get("enrollment_state"))
		w.Write([]byte(`[{"id":1,"name":"Algebra"},{"id":2,"name":"History"},{"id":3,"name":"Locked"}]`))
	})
	mux.HandleFunc("/courses/1/assignments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"name":"Problem set","due_at":%q,"html_url":"https://canvas/1/a"},
			{"name":"Past","due_at":%q,"html_url":"https://canvas/1/b"},
			{"name":"No due date","due_at":null}
		]`, due(48*time.Hour), due(-time.Hour))
	})
	mux.HandleFunc("/courses/2/assignments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"name":"Essay","due_at":%q,"html_url":"https://canvas/2/a"},
			{"name":"Far away","due_at":%q}
		]`, due(3*time.Hour), due(10*24*time.Hour))
	})
	mux.HandleFunc("/courses/3/assignments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := newClient(srv).UpcomingAssignments(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Essay", got[0].Name)
	assert.Equal(t, "2024-05-06", got[0].DateDue)
	assert.Equal(t, "15:00", got[0].TimeDue)
	assert.Equal(t, "Problem set", got[1].Name)
	assert.Equal(t, "https://canvas/1/a", got[1].CanvasLink)
}

func TestUpcomingAssignments_CourseListFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(srv).UpcomingAssignments(context.Background(), "bad-token")
	assert.True(t, apperrors.Is(err, apperrors.KindCollaboratorUnavailable))
}

func TestUpcomingAssignments_CourseFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1}]`))
	})
	mux.HandleFunc("/courses/1/assignments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := newClient(srv).UpcomingAssignments(context.Background(), "user-token")
	assert.True(t, apperrors.Is(err, apperrors.KindCollaboratorUnavailable))
}
