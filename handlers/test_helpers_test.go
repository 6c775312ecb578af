package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediation_flow_go/config"
	"mediation_flow_go/middleware"
	"mediation_flow_go/models"
	"mediation_flow_go/repository"
	"mediation_flow_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type testServer struct {
	db   *gorm.DB
	echo *echo.Echo
}

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

// setupServer wires the full router over a fresh database, optionally behind a write limiter
func setupServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	testDB := setupTestDB(t)
	clock := func() time.Time { return testNow }
	svc := services.New(repository.NewGormStore(testDB), clock)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	var writeLimit echo.MiddlewareFunc
	if limiter != nil {
		writeLimit = limiter.Middleware()
	}
	New(svc, &config.Config{Environment: "test", FollowUpLookaheadDays: 1}, clock).Register(e, writeLimit)

	return &testServer{db: testDB, echo: e}
}

// do performs a request as actor (id, role); a nil body sends none
func (s *testServer) do(t *testing.T, method, path string, body interface{}, actorID, role string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actorID != "" {
		req.Header.Set(middleware.HeaderActorID, actorID)
		req.Header.Set(middleware.HeaderActorRole, role)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) person(t *testing.T, name, role string) *models.Person {
	p := &models.Person{Name: name, Role: role}
	require.NoError(t, s.db.Create(p).Error)
	return p
}

// createCase opens a case through the API and returns its decoded body
func (s *testServer) createCase(t *testing.T, body map[string]interface{}) models.Case {
	payload := map[string]interface{}{
		"title":       "Boundary dispute",
		"case_type":   models.CaseTypeBusiness,
		"filing_date": "2024-01-10",
	}
	for k, v := range body {
		payload[k] = v
	}
	rec := s.do(t, http.MethodPost, "/api/cases", payload, "officer-1", models.PersonRoleOfficer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var kase models.Case
	decodeData(t, rec, &kase)
	return kase
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorResponse  `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}
