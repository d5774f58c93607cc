package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/postboard/internal/handler"
	"github.com/iliyamo/postboard/internal/queue"
	"github.com/iliyamo/postboard/internal/repository"
	"github.com/iliyamo/postboard/internal/router"
)

// recordingPublisher captures published events on a channel.
type recordingPublisher struct{ events chan queue.ActivityEvent }

func newRecorder() *recordingPublisher {
	return &recordingPublisher{events: make(chan queue.ActivityEvent, 8)}
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.events <- ev
	return nil
}

func (p *recordingPublisher) next(t *testing.T) queue.ActivityEvent {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return queue.ActivityEvent{}
	}
}

func (p *recordingPublisher) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-p.events:
		t.Fatalf("unexpected event %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	e      *echo.Echo
	mock   sqlmock.Sqlmock
	events *recordingPublisher
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	events := newRecorder()
	e := echo.New()
	router.RegisterAdmin(e, handler.NewAdminHandler(repository.NewUserRepo(sqlxDB), events, time.Second), "")
	router.RegisterPosts(e, handler.NewPostHandler(repository.NewPostRepo(sqlxDB), repository.NewCommentRepo(sqlxDB), events, time.Second))
	return fixture{e: e, mock: mock, events: events}
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

var (
	postCols    = []string{"id", "title", "content", "created_at", "modified_at", "app_user_id"}
	authorCols  = append(append([]string{}, postCols...), "author_id", "first_name", "last_name")
	commentCols = []string{"id", "content", "created_at", "modified_at", "app_user_id", "post_id", "first_name", "last_name"}
)
