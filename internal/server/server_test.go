package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/jask/kanban/internal/assignee"
	"github.com/jask/kanban/internal/board"
	"github.com/jask/kanban/internal/metrics"
	"github.com/jask/kanban/internal/modal"
)

func newTestServer(t *testing.T) (*Server, *board.Store, *modal.Flag) {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	store := board.New(board.WithLogger(logger), board.WithClock(func() time.Time { return time.UnixMilli(1000) }))
	flag := modal.New()
	collector := metrics.New()
	collector.Watch(store)
	return New(store, flag, collector, logger), store, flag
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestColumnsEndpoints(t *testing.T) {
	t.Parallel()

	s, store, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/columns", `{"label":"Done"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"label":"Done 1"}`, rec.Body.String())

	rec = do(t, s, http.MethodPatch, "/api/columns/Done%201", `{"label":"Archive"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/labels", "")
	require.JSONEq(t, `["To Do","In Progress","Done","Archive"]`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/api/columns/In%20Progress", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/columns/In%20Progress", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, []string{"To Do", "Done", "Archive"}, store.Labels())

	rec = do(t, s, http.MethodPost, "/api/columns", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestLabelsWithEscapesRoute(t *testing.T) {
	t.Parallel()

	s, store, _ := newTestServer(t)
	store.AddColumn("50%25 off")
	store.AddColumn("a/b")

	rec := do(t, s, http.MethodPost, "/api/columns/a%2Fb/tasks", `{"title":"slash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	titles, ok := columnTitles(store, "a/b")
	require.True(t, ok)
	require.Equal(t, []string{"slash"}, titles)

	rec = do(t, s, http.MethodPost, "/api/columns/50%2525%20off/tasks", `{"title":"percent"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	titles, ok = columnTitles(store, "50%25 off")
	require.True(t, ok)
	require.Equal(t, []string{"percent"}, titles)

	rec = do(t, s, http.MethodDelete, "/api/columns/50%2525%20off", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/columns/a%2Fb", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"To Do", "In Progress", "Done"}, store.Labels())
}

func TestTaskEndpoints(t *testing.T) {
	t.Parallel()

	s, store, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/columns/To%20Do/tasks", `{"title":"Hang bats","description":"porch"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created board.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, int64(1000), created.ID)

	rec = do(t, s, http.MethodPost, "/api/columns/Nope/tasks", `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPatch, "/api/columns/To%20Do/tasks/1000", `{"title":"Hang more bats"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodPatch, "/api/columns/To%20Do/tasks/1000", `{"description":"roof"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodPatch, "/api/columns/To%20Do/tasks/1", `{"title":"A","description":"B"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodPatch, "/api/columns/To%20Do/tasks/1", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPatch, "/api/columns/To%20Do/tasks/abc", `{"title":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/columns/To%20Do/tasks/1000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got board.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Hang more bats", got.Title)
	require.Equal(t, "roof", got.Description)

	rec = do(t, s, http.MethodPost, "/api/columns/To%20Do/tasks/1000/move", `{"to":"Done","index":0}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/columns/To%20Do/tasks/1/move", `{"to":"Done"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	done, _ := columnTitles(store, "Done")
	require.Equal(t, []string{"Hang more bats", "Stock Up on Treats", "A"}, done)

	rec = do(t, s, http.MethodDelete, "/api/columns/Done/tasks/3", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/columns/Done/tasks/3", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func columnTitles(store *board.Store, label string) ([]string, bool) {
	for _, c := range store.Columns() {
		if c.Label != label {
			continue
		}
		out := []string{}
		for _, t := range c.Tasks {
			out = append(out, t.Title)
		}
		return out, true
	}
	return nil, false
}

func TestAssigneeEndpoints(t *testing.T) {
	t.Parallel()

	s, store, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/columns/To%20Do/tasks/1/assignees", `{"name":"ghost"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/columns/To%20Do/tasks/1/assignees", `{"name":"werewolf"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/columns/To%20Do/tasks/1/unassigned", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var free []assignee.Assignee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &free))
	require.Equal(t, []assignee.Assignee{
		assignee.MustLookup(assignee.Dracula),
		assignee.MustLookup(assignee.Hat),
		assignee.MustLookup(assignee.Spider),
	}, free)

	rec = do(t, s, http.MethodDelete, "/api/columns/To%20Do/tasks/1/assignees/pumpkin", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	task, _ := store.Task(1, "To Do")
	require.Equal(t, []assignee.Assignee{assignee.MustLookup(assignee.Ghost)}, task.Assignees)

	rec = do(t, s, http.MethodGet, "/api/assignees", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/assignee/spider.svg")
}

func TestFilterEndpoint(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/filter", `{"keyword":"treats"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"keyword":"treats"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/columns", "")
	var cols []board.Column
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cols))
	require.Len(t, cols, 3)
	require.Empty(t, cols[0].Tasks)
	require.Len(t, cols[2].Tasks, 1)

	rec = do(t, s, http.MethodPut, "/api/filter", `{"keyword":"tr"}`)
	require.JSONEq(t, `{"keyword":""}`, rec.Body.String())
}

func TestModalEndpoints(t *testing.T) {
	t.Parallel()

	s, _, flag := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/modal", `{"taskId":2,"columnLabel":"In Progress"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, flag.IsOpen())
	require.Equal(t, int64(2), flag.TaskID())

	rec = do(t, s, http.MethodGet, "/api/modal", "")
	require.JSONEq(t, `{"isOpen":true,"taskId":2,"columnLabel":"In Progress"}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/api/modal", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.False(t, flag.IsOpen())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/columns", `{"label":"Backlog"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "kanban_board_notifications_total 1")
	require.Contains(t, rec.Body.String(), `kanban_board_column_tasks{column="Backlog"} 0`)
}

// syncRecorder is a ResponseWriter safe to read while a handler writes.
type syncRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
}

func (r *syncRecorder) Header() http.Header { return r.header }
func (r *syncRecorder) WriteHeader(int)     {}
func (r *syncRecorder) Flush()              {}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *syncRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func TestStreamPushesChanges(t *testing.T) {
	t.Parallel()

	s, store, flag := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := &syncRecorder{header: http.Header{}}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.stream(s.Echo().NewContext(req, rec))
	}()

	require.Eventually(t, func() bool { return strings.Count(rec.String(), "event: ") == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, s.boardEvents.Subscribers())

	store.AddColumn("Backlog")
	require.Eventually(t, func() bool { return strings.Count(rec.String(), "event: board") == 2 }, time.Second, 5*time.Millisecond)
	flag.Open(1, "To Do")
	require.Eventually(t, func() bool { return strings.Count(rec.String(), "event: modal") == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not exit")
	}

	body := rec.String()
	require.Contains(t, body, `"label":"Backlog"`)
	require.Contains(t, body, `data: {"isOpen":true,"taskId":1,"columnLabel":"To Do"}`)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Zero(t, s.boardEvents.Subscribers())
}

func TestShutdownDetaches(t *testing.T) {
	t.Parallel()

	s, store, _ := newTestServer(t)
	ch := s.boardEvents.Subscribe()
	require.NoError(t, s.Shutdown(context.Background()))
	store.AddColumn("After")
	select {
	case <-ch:
		t.Fatal("server still attached to store")
	default:
	}
}
