package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/migration"
	"github.com/smallbiznis/atelier/internal/observability"
	obsmetrics "github.com/smallbiznis/atelier/internal/observability/metrics"
	"github.com/smallbiznis/atelier/internal/ratelimit"
	referencerepo "github.com/smallbiznis/atelier/internal/reference/repository"
	referencesvc "github.com/smallbiznis/atelier/internal/reference/service"
	"github.com/smallbiznis/atelier/internal/seed"
	signupdomain "github.com/smallbiznis/atelier/internal/signup/domain"
	dbpkg "github.com/smallbiznis/atelier/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSignupService struct {
	calls  int
	last   signupdomain.Request
	result *signupdomain.Result
	err    error
}

func (f *fakeSignupService) Signup(_ context.Context, req signupdomain.Request) (*signupdomain.Result, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testServer struct {
	srv    *Server
	signup *fakeSignupService
}

func newTestServer(t *testing.T, maxPerWindow int) *testServer {
	t.Helper()
	return newTestServerBehind(t, maxPerWindow, nil)
}

func newTestServerBehind(t *testing.T, maxPerWindow int, trustedProxies []string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	_, err = seed.EnsureReferenceData(context.Background(), db, node)
	require.NoError(t, err)

	settingsCfg := config.DefaultProvisioningConfig()
	settingsCfg.RateLimit.Max = maxPerWindow
	settingsCfg.RateLimit.Window = time.Minute
	settings := config.NewStaticProvisioningConfig(settingsCfg)

	engine, err := NewEngine(
		observability.Config{Environment: "test"},
		obsmetrics.NewHTTPMetrics(prometheus.NewRegistry(), obsmetrics.Config{}),
		trustedProxies,
	)
	require.NoError(t, err)
	fake := &fakeSignupService{result: &signupdomain.Result{AccountID: 42, Kind: "brand", Slug: "cafe-studio"}}

	srv := NewServer(ServerParams{
		Gin:       engine,
		Cfg:       config.Config{Environment: "test"},
		SignupSvc: fake,
		Catalog:   referencesvc.NewCatalog(referencerepo.NewRepository(db)),
		Limiter:   ratelimit.NewRegistrationLimiter(nil, settings, zaptest.NewLogger(t)),
	})
	return &testServer{srv: srv, signup: fake}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return ts.doWithHeader(t, method, path, body, nil)
}

func (ts *testServer) doWithHeader(t *testing.T, method, path, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	for key, values := range header {
		req.Header[key] = values
	}
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	}
	return rec, payload
}

const brandBody = `{
	"email": "ana@example.com",
	"password": "Secreta#2024",
	"nombre": "Ana",
	"apellido": "García",
	"tipo_usuario": "brand",
	"nombreMarca": "Café Studio",
	"anioFundacion": "2015",
	"estilosMarca": ["Urbano"]
}`

func TestSignupCreated(t *testing.T) {
	ts := newTestServer(t, 10)

	rec, payload := ts.do(t, http.MethodPost, "/api/auth/registro", brandBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, messageRegistered, payload["message"])
	assert.Equal(t, 1, ts.signup.calls)
	assert.Equal(t, "Café Studio", ts.signup.last.BrandName)
	year, ok := ts.signup.last.FoundedYear.Int()
	assert.True(t, ok)
	assert.Equal(t, 2015, year)
}

func TestSignupMalformedBody(t *testing.T) {
	ts := newTestServer(t, 10)

	for name, body := range map[string]string{
		"not json":     `{"email":`,
		"empty":        ``,
		"object year":  `{"anioFundacion": {"v": 1}}`,
		"array string": `{"email": ["a"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, payload := ts.do(t, http.MethodPost, "/api/auth/registro", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, signupdomain.MessageMalformed, payload["message"])
		})
	}
	assert.Zero(t, ts.signup.calls)
}

func TestSignupErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
		field   string
	}{
		{
			name:    "validation",
			err:     &signupdomain.ValidationError{Field: "email", Message: "invalid email format"},
			status:  http.StatusBadRequest,
			message: "invalid email format",
			field:   "email",
		},
		{
			name:    "duplicate email",
			err:     &signupdomain.ProvisioningError{Kind: signupdomain.KindDuplicateEmail, Step: signupdomain.StepAccount},
			status:  http.StatusBadRequest,
			message: signupdomain.MessageDuplicateEmail,
		},
		{
			name:    "invalid reference",
			err:     &signupdomain.ProvisioningError{Kind: signupdomain.KindInvalidReference, Step: signupdomain.StepProfile},
			status:  http.StatusBadRequest,
			message: signupdomain.MessageInvalidReference,
		},
		{
			name:    "missing seed data",
			err:     &signupdomain.ProvisioningError{Kind: signupdomain.KindMissingSeedData, Step: signupdomain.StepStyles},
			status:  http.StatusInternalServerError,
			message: signupdomain.MessageFailed,
		},
		{
			name:    "storage unavailable",
			err:     &signupdomain.ProvisioningError{Kind: signupdomain.KindStorageUnavailable, Step: signupdomain.StepCommit},
			status:  http.StatusInternalServerError,
			message: signupdomain.MessageFailed,
		},
		{
			name:    "unclassified",
			err:     fmt.Errorf("boom"),
			status:  http.StatusInternalServerError,
			message: messageInternal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, 10)
			ts.signup.err = tc.err

			rec, payload := ts.do(t, http.MethodPost, "/api/auth/registro", brandBody)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, tc.message, payload["message"])
			if tc.field != "" {
				assert.Equal(t, tc.field, payload["field"])
			} else {
				assert.NotContains(t, payload, "field")
			}
		})
	}
}

func TestSignupRateLimited(t *testing.T) {
	ts := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		rec, _ := ts.do(t, http.MethodPost, "/api/auth/registro", brandBody)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, payload := ts.do(t, http.MethodPost, "/api/auth/registro", brandBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, messageRateLimited, payload["message"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, ts.signup.calls)
}

func TestSignupRateLimitIgnoresUntrustedForwardedFor(t *testing.T) {
	ts := newTestServer(t, 2)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		header := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("198.51.100.%d", i+1)}}
		rec, _ := ts.doWithHeader(t, http.MethodPost, "/api/auth/registro", brandBody, header)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusCreated,
		http.StatusCreated,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
	assert.Equal(t, 2, ts.signup.calls)
}

func TestSignupRateLimitHonoursTrustedProxy(t *testing.T) {
	ts := newTestServerBehind(t, 2, []string{"203.0.113.7"})

	for i := 0; i < 3; i++ {
		header := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("198.51.100.%d", i+1)}}
		rec, _ := ts.doWithHeader(t, http.MethodPost, "/api/auth/registro", brandBody, header)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 3, ts.signup.calls)
}

func TestNewEngineRejectsBadProxy(t *testing.T) {
	_, err := NewEngine(
		observability.Config{Environment: "test"},
		obsmetrics.NewHTTPMetrics(prometheus.NewRegistry(), obsmetrics.Config{}),
		[]string{"not-an-ip"},
	)
	assert.Error(t, err)
}

func TestListStyles(t *testing.T) {
	ts := newTestServer(t, 10)

	rec, payload := ts.do(t, http.MethodGet, "/api/styles", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := payload["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, len(seed.DefaultStyles))
}

func TestListCitiesPaged(t *testing.T) {
	ts := newTestServer(t, 10)

	rec, payload := ts.do(t, http.MethodGet, "/api/cities?page_size=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["data"], 3)
	info := payload["page_info"].(map[string]any)
	assert.Equal(t, true, info["has_more"])

	token := info["next_page_token"].(string)
	rec, payload = ts.do(t, http.MethodGet, "/api/cities?page_size=3&page_token="+token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["data"], 2)
	assert.Equal(t, false, payload["page_info"].(map[string]any)["has_more"])
}

func TestListCitiesBadToken(t *testing.T) {
	ts := newTestServer(t, 10)

	rec, payload := ts.do(t, http.MethodGet, "/api/cities?page_token=***", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])
}

func TestHealthAndFallback(t *testing.T) {
	ts := newTestServer(t, 10)

	rec, payload := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])

	rec, payload = ts.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, payload["success"])
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(&signupdomain.ValidationError{Field: "password"})
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "password", code)

	typ, code = classifyErrorForLog(&signupdomain.ProvisioningError{Kind: signupdomain.KindDuplicateEmail, Step: signupdomain.StepAccount})
	assert.Equal(t, "duplicate_email", typ)
	assert.Equal(t, "account", code)

	typ, _ = classifyErrorForLog(ErrRateLimited)
	assert.Equal(t, "rate_limited", typ)
}
