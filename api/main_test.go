package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*application, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var cfg config
	cfg.env = "test"
	cfg.jwt.secret = "test-secret"
	cfg.jwt.ttl = time.Hour
	return &application{
		config:  cfg,
		storage: newStorage(sqlx.NewDb(db, "postgres")),
	}, mock
}

func testUser() *user {
	return &user{
		ID:       "user-1",
		FullName: "John Doe",
		Username: "johndoe",
	}
}

// withUser injects an authenticated user the way the auth middleware does.
func withUser(r *http.Request, u *user) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, u)
	return r.WithContext(ctx)
}

func jsonRequest(method, target, body string) *http.Request {
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	return payload["error"]
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "fullname", "username", "password_hash"})
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "description", "completed", "due_date", "category", "created_at", "updated_at"})
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t)

	rr := httptest.NewRecorder()
	app.healthCheckHandler(rr, httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var payload map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	assert.Equal(t, "available", payload["status"])
	assert.Equal(t, "test", payload["environment"])
	assert.Equal(t, version, payload["version"])
}

func TestRoutes(t *testing.T) {
	t.Run("task routes reject missing session cookie", func(t *testing.T) {
		app, _ := newTestApp(t)
		routes := composeRoutes(app)

		for _, tc := range []struct {
			method string
			target string
		}{
			{http.MethodPost, "/api/task"},
			{http.MethodGet, "/api/task"},
			{http.MethodPatch, "/api/task/abc"},
			{http.MethodPatch, "/api/task/toggle/abc"},
			{http.MethodDelete, "/api/task/abc"},
			{http.MethodPost, "/api/user/logout"},
		} {
			rr := httptest.NewRecorder()
			routes.ServeHTTP(rr, jsonRequest(tc.method, tc.target, "{}"))
			assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.target)
		}
	})

	t.Run("toggle path routes to the toggle handler", func(t *testing.T) {
		app, mock := newTestApp(t)
		routes := composeRoutes(app)

		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("user-1").
			WillReturnRows(userRows().AddRow("user-1", now, now, "John Doe", "johndoe", []byte("x")))
		mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \$1`).
			WithArgs("task-1").
			WillReturnRows(taskRows().AddRow("task-1", "user-1", "Buy milk", "", false, nil, "work", now, now))
		mock.ExpectQuery(`UPDATE tasks SET completed = \$1, updated_at = now\(\) WHERE id = \$2 RETURNING`).
			WithArgs(true, "task-1").
			WillReturnRows(taskRows().AddRow("task-1", "user-1", "Buy milk", "", true, nil, "work", now, now))

		rr := httptest.NewRecorder()
		r := jsonRequest(http.MethodPatch, "/api/task/toggle/task-1", "")
		r.AddCookie(sessionCookie(t, app, "user-1"))
		routes.ServeHTTP(rr, r)

		require.Equal(t, http.StatusOK, rr.Code)
		var got task
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.True(t, got.Completed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("signup then list with the issued cookie", func(t *testing.T) {
		app, mock := newTestApp(t)
		routes := composeRoutes(app)

		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("johndoe").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "John Doe", "johndoe", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		rr := httptest.NewRecorder()
		routes.ServeHTTP(rr, jsonRequest(http.MethodPost, "/api/user/signup",
			`{"fullname": "John Doe", "username": "johndoe", "password": "s3cret-pass"}`))
		require.Equal(t, http.StatusOK, rr.Code)

		var created user
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(created.ID).
			WillReturnRows(userRows().AddRow(created.ID, now, now, "John Doe", "johndoe", []byte("x")))
		mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE user_id = \$1`).
			WithArgs(created.ID).
			WillReturnRows(taskRows())

		rr = httptest.NewRecorder()
		r := jsonRequest(http.MethodGet, "/api/task", "")
		r.AddCookie(cookies[0])
		routes.ServeHTTP(rr, r)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `"No tasks has been created yet"`, rr.Body.String())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// sessionCookie issues a cookie for userID using the app's signing secret.
func sessionCookie(t *testing.T, app *application, userID string) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, app.issueSessionCookie(rr, userID))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func readBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	data, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(data)
}
