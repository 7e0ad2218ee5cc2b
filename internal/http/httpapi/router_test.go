package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldwork/internal/adapter/memstore"
	"goldwork/internal/app"
	"goldwork/internal/http/handlers"
	"goldwork/internal/middleware"
)

const testSecret = "test-secret"

type client struct {
	t      *testing.T
	router http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	svc := app.New(memstore.New(), app.Options{Logger: zerolog.Nop()})
	router := NewRouter(handlers.NewApp(svc, zerolog.Nop()), Options{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         zerolog.Nop(),
	})
	return &client{t: t, router: router}
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := middleware.SignJWT(testSecret, middleware.TokenClaims{Sub: sub, Role: role, Exp: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	return tok
}

func (c *client) do(method, path, tok string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return errObj["code"].(string)
}

func TestHealthIsPublic(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodGet, "/jobs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", errorCode(t, rec))
}

func TestHappyPathOverHTTP(t *testing.T) {
	c := newClient(t)
	admin := token(t, "admin-1", "admin")
	employer := token(t, "employer-1", "employer")
	student := token(t, "student-1", "student")

	rec := c.do(http.MethodPost, "/admin/accounts/employer-1/grant", admin, map[string]any{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Translate a landing page", "goldReward": 500, "priority": "high"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	jobID := decodeBody(t, rec)["id"].(string)

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/apply", student, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appID := decodeBody(t, rec)["id"].(string)

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/apply", student, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_application", errorCode(t, rec))

	rec = c.do(http.MethodPatch, "/applications/"+appID+"/status", employer, map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/fund-escrow", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "escrowed", decodeBody(t, rec)["status"])

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/submit", student, map[string]any{
		"proofUrl":        "https://example.com/proof",
		"timeTaken":       "2h",
		"completionNotes": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "submitted", decodeBody(t, rec)["submission_status"])

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/confirm", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decodeBody(t, rec)
	assert.Equal(t, "completed", confirmed["job"].(map[string]any)["status"])
	assert.Equal(t, "released", confirmed["payment"].(map[string]any)["status"])

	rec = c.do(http.MethodGet, "/accounts/me", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 500, decodeBody(t, rec)["balance"])

	rec = c.do(http.MethodGet, "/accounts/me", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["balance"])

	rec = c.do(http.MethodGet, "/jobs/"+jobID+"/events?since=2", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeBody(t, rec)
	assert.NotEmpty(t, events["items"])
	assert.Greater(t, events["next"].(float64), float64(2))

	rec = c.do(http.MethodGet, "/admin/ledger/totals", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 500, decodeBody(t, rec)["total"])
}

func TestErrorEnvelope(t *testing.T) {
	c := newClient(t)
	employer := token(t, "employer-1", "employer")
	student := token(t, "student-1", "student")

	rec := c.do(http.MethodPost, "/jobs", student, map[string]any{"title": "x", "goldReward": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))

	rec = c.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "", "goldReward": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	rec = c.do(http.MethodGet, "/jobs/does-not-exist", employer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Design a logo", "goldReward": 100})
	require.Equal(t, http.StatusCreated, rec.Code)
	jobID := decodeBody(t, rec)["id"].(string)

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/confirm", employer, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", errorCode(t, rec))

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/submit", student, map[string]any{"timeTaken": "soon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/jobs/"+jobID+"/events?since=-1", employer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsufficientFundsIsGeneric(t *testing.T) {
	c := newClient(t)
	employer := token(t, "employer-1", "employer")
	student := token(t, "student-1", "student")

	rec := c.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Write product copy", "goldReward": 300})
	require.Equal(t, http.StatusCreated, rec.Code)
	jobID := decodeBody(t, rec)["id"].(string)
	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/apply", student, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	appID := decodeBody(t, rec)["id"].(string)
	rec = c.do(http.MethodPatch, "/applications/"+appID+"/status", employer, map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/fund-escrow", employer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "insufficient_funds", body["code"])
	assert.Equal(t, "insufficient funds", body["message"])
}

func TestJobReadsRedactParticipantFields(t *testing.T) {
	c := newClient(t)
	employer := token(t, "employer-1", "employer")
	student := token(t, "student-1", "student")
	outsider := token(t, "student-2", "student")

	rec := c.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Write product copy", "goldReward": 300})
	require.Equal(t, http.StatusCreated, rec.Code)
	jobID := decodeBody(t, rec)["id"].(string)
	rec = c.do(http.MethodPost, "/jobs/"+jobID+"/apply", student, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	appID := decodeBody(t, rec)["id"].(string)
	rec = c.do(http.MethodPatch, "/applications/"+appID+"/status", employer, map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/jobs/"+jobID, outsider, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeBody(t, rec), "accepted_student_id")

	rec = c.do(http.MethodGet, "/jobs/"+jobID, student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student-1", decodeBody(t, rec)["accepted_student_id"])

	rec = c.do(http.MethodGet, "/jobs?student_id=student-1", outsider, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestAdminRoutes(t *testing.T) {
	c := newClient(t)
	admin := token(t, "admin-1", "admin")
	employer := token(t, "employer-1", "employer")

	rec := c.do(http.MethodPost, "/anomalies/detect", employer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/anomalies/detect", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 0, decodeBody(t, rec)["created"])

	rec = c.do(http.MethodGet, "/anomalies?status=open", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["items"])

	rec = c.do(http.MethodPost, "/admin/cleanup", admin, map[string]any{"olderThanHours": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/admin/cleanup", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 0, decodeBody(t, rec)["failed"])

	rec = c.do(http.MethodPost, "/employers/me/company-name", employer, map[string]any{"oldName": "Acme", "newName": "Acme Labs"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	c := newClient(t)
	req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
