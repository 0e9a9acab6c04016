package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	appctx "erpledger/internal/core/context"
	"erpledger/internal/infrastructure/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator map[string]string

func (v staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if uid, ok := v[token]; ok {
		return &appctx.UserContext{UserID: uid}, nil
	}
	return nil, errors.New("bad token")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_AppError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientComponentStock("Steel", "40", "30"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apperror.CodeInsufficientComponentStock, body["code"])
	assert.Equal(t, "Insufficient stock for component: Steel", body["message"])
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	r.GET("/x", func(c *gin.Context) { _ = c.Error(errors.New("disk on fire")) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/x", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, decode(t, rec)["code"])
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), Auth(staticValidator{"good": "clerk"}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.ActorID(c.Request.Context()))
	})

	cases := map[string]int{
		"":            http.StatusUnauthorized,
		"Basic abc":   http.StatusUnauthorized,
		"Bearer nope": http.StatusUnauthorized,
		"Bearer good": http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
		if want == http.StatusOK {
			assert.Equal(t, "clerk", rec.Body.String())
		}
	}
}

func TestOptionalAuth_FallsBackToSystem(t *testing.T) {
	r := gin.New()
	r.Use(OptionalAuth(staticValidator{}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.ActorID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, appctx.SystemActor, rec.Body.String())
}

func TestIdempotency_ReplaysResponse(t *testing.T) {
	store := cache.NewMemoryIdempotencyStore(time.Minute)
	calls := 0

	r := gin.New()
	r.Use(ErrorHandler(), Idempotency(store))
	r.POST("/orders", func(c *gin.Context) {
		calls++
		resp := gin.H{"call": calls}
		CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
		c.JSON(http.StatusCreated, resp)
	})
	r.POST("/fail", func(c *gin.Context) {
		calls++
		_ = c.Error(apperror.NewValidation("nope"))
	})

	send := func(path, key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set(HeaderIdempotencyKey, key)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := send("/orders", "k1", `{"a":1}`)
	second := send("/orders", "k1", `{"a":1}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)

	mismatch := send("/orders", "k1", `{"a":2}`)
	assert.Equal(t, http.StatusConflict, mismatch.Code)

	send("/fail", "k2", `{}`)
	replayed := send("/fail", "k2", `{}`)
	assert.Equal(t, http.StatusBadRequest, replayed.Code)
	assert.Equal(t, 2, calls)
}
