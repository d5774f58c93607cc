package handler_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/postboard/internal/queue"
)

func TestListPosts(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	f.mock.ExpectQuery(`FROM post$`).WillReturnRows(sqlmock.NewRows(postCols).AddRow("p1", "t", "c", now, now, "u1"))

	rec := f.do(http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0]["id"])
	assert.Equal(t, "u1", out[0]["app_user_id"])
}

func TestListPosts_DatabaseError(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery(`FROM post`).WillReturnError(sql.ErrConnDone)

	rec := f.do(http.MethodGet, "/api/posts", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to fetch posts", errorBody(t, rec))
}

func TestListPostsWithComments_RoutesBeforePostID(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	f.mock.ExpectQuery(`FROM post p`).
		WillReturnRows(sqlmock.NewRows(authorCols).AddRow("p1", "t", "c", now, now, "u1", "u1", "Ada", "Lovelace"))
	f.mock.ExpectQuery(`FROM comment c`).WillReturnRows(sqlmock.NewRows(commentCols))

	rec := f.do(http.MethodGet, "/api/posts/posts-w-comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, []any{}, out[0]["comments"])
	assert.Equal(t, "Ada", out[0]["first_name"])
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetPost(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	f.mock.ExpectQuery(`WHERE p\.id = \?`).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(authorCols).AddRow("p1", "t", "c", now, now, "u1", "u1", "Ada", "Lovelace"))
	f.mock.ExpectQuery(`WHERE c\.post_id = \?`).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(commentCols).AddRow("c1", "hi", now, now, "u2", "p1", "Alan", "Turing"))

	rec := f.do(http.MethodGet, "/api/posts/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "p1", out["id"])
	assert.Len(t, out["comments"], 1)
}

func TestGetPost_NotFound(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery(`WHERE p\.id = \?`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(authorCols))

	rec := f.do(http.MethodGet, "/api/posts/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", errorBody(t, rec))
}

func TestListPostsByUser_Unknown(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery(`WHERE p\.app_user_id = \?`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(authorCols))

	rec := f.do(http.MethodGet, "/api/posts/user/ghost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreatePost(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	f.mock.ExpectExec(`INSERT INTO post`).WithArgs(sqlmock.AnyArg(), "Hello", "World", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery(`FROM post WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows(postCols).AddRow("p9", "Hello", "World", now, now, "u1"))

	rec := f.do(http.MethodPost, "/api/posts", `{"title":"Hello","content":"World","app_user_id":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "p9", out["id"])
	assert.NotEmpty(t, out["created_at"])

	ev := f.events.next(t)
	assert.Equal(t, queue.PostCreated, ev.Type)
	assert.Equal(t, "p9", ev.PostID)
	assert.Equal(t, "Hello", ev.Title)
}

func TestCreatePost_MalformedBody(t *testing.T) {
	f := setup(t)
	rec := f.do(http.MethodPost, "/api/posts", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreatePost_UnknownAuthor(t *testing.T) {
	f := setup(t)
	f.mock.ExpectExec(`INSERT INTO post`).WillReturnError(sql.ErrConnDone)

	rec := f.do(http.MethodPost, "/api/posts", `{"title":"t","content":"c","app_user_id":"ghost"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to create post", errorBody(t, rec))
	f.events.none(t)
}

func TestDeletePost(t *testing.T) {
	f := setup(t)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`DELETE FROM comment`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectExec(`DELETE FROM post`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	rec := f.do(http.MethodDelete, "/api/posts/p1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	ev := f.events.next(t)
	assert.Equal(t, queue.PostDeleted, ev.Type)
	assert.EqualValues(t, 2, ev.CommentsDeleted)
}

func TestDeletePost_Commentless(t *testing.T) {
	f := setup(t)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`DELETE FROM comment`).WithArgs("p2").WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectExec(`DELETE FROM post`).WithArgs("p2").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	rec := f.do(http.MethodDelete, "/api/posts/p2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeletePost_NotFound(t *testing.T) {
	f := setup(t)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`DELETE FROM comment`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectExec(`DELETE FROM post`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectRollback()

	rec := f.do(http.MethodDelete, "/api/posts/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
	f.events.none(t)
}

func TestCreateComment(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	f.mock.ExpectExec(`INSERT INTO comment`).WithArgs(sqlmock.AnyArg(), "nice", "u2", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery(`FROM comment WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "created_at", "modified_at", "app_user_id", "post_id"}).
			AddRow("c7", "nice", now, now, "u2", "p1"))

	rec := f.do(http.MethodPost, "/api/comments", `{"content":"nice","app_user_id":"u2","post_id":"p1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "c7", out["id"])
	assert.Equal(t, "p1", out["post_id"])

	ev := f.events.next(t)
	assert.Equal(t, queue.CommentCreated, ev.Type)
	assert.Equal(t, "c7", ev.CommentID)
}

func TestDeleteComment(t *testing.T) {
	f := setup(t)
	f.mock.ExpectExec(`DELETE FROM comment WHERE id = \?`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`DELETE FROM comment WHERE id = \?`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 0))

	rec := f.do(http.MethodDelete, "/api/comments/c1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, queue.CommentDeleted, f.events.next(t).Type)

	rec = f.do(http.MethodDelete, "/api/comments/c1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "comment not found", errorBody(t, rec))
}
