package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(routes func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	routes(r)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRequestID_Generated(t *testing.T) {
	r := newEngine(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get("X-Request-ID")
	assert.Regexp(t, regexp.MustCompile(`^REQ-[0-9A-F]{8}$`), id)
	assert.Equal(t, id, w.Body.String())
}

func TestErrorHandler_RendersTypedError(t *testing.T) {
	r := newEngine(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) {
			_ = c.Error(apierror.Conflict(apierror.ReasonItemAlreadySold, "device already sold"))
			c.Abort()
		})
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusConflict, w.Code)
	body := envelope(t, w)
	assert.Equal(t, apierror.KindConflict, body.Code)
	assert.Equal(t, apierror.ReasonItemAlreadySold, body.Reason)
	assert.Equal(t, "device already sold", body.Detail)
	assert.Equal(t, w.Header().Get("X-Request-ID"), body.SupportCode)
}

func TestErrorHandler_HidesPersistenceCause(t *testing.T) {
	r := newEngine(func(r *gin.Engine) {
		r.GET("/typed", func(c *gin.Context) { _ = c.Error(apierror.Persistence(errors.New("pq: connection reset"))) })
		r.GET("/untyped", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })
	})
	for _, path := range []string{"/typed", "/untyped"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusInternalServerError, w.Code, path)
		body := envelope(t, w)
		assert.Equal(t, apierror.KindPersistence, body.Code)
		assert.Equal(t, "internal server error", body.Detail)
		assert.NotContains(t, w.Body.String(), "connection reset")
	}
}

func TestErrorHandler_KeepsWrittenResponse(t *testing.T) {
	r := newEngine(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) {
			c.String(http.StatusAccepted, "partial")
			_ = c.Error(errors.New("late failure"))
		})
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	r := newEngine(func(r *gin.Engine) {
		r.GET("/", func(c *gin.Context) { panic("nil map") })
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, envelope(t, w).SupportCode)
}

func TestJWTAuth(t *testing.T) {
	const secret = "s3cret"
	r := newEngine(func(r *gin.Engine) {
		r.GET("/me", JWTAuth(secret), func(c *gin.Context) {
			c.String(http.StatusOK, GetClaims(c).UserID)
		})
		r.GET("/anon", func(c *gin.Context) {
			assert.Nil(t, GetClaims(c))
			c.Status(http.StatusNoContent)
		})
	})

	sign := func(method jwt.SigningMethod, key any, exp time.Time) string {
		tok, err := jwt.NewWithClaims(method, JWTClaims{
			UserID:           "u-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		}).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return serve(r, req)
	}

	w := call("Bearer " + sign(jwt.SigningMethodHS256, []byte(secret), time.Now().Add(time.Hour)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"expired":    "Bearer " + sign(jwt.SigningMethodHS256, []byte(secret), time.Now().Add(-time.Minute)),
		"wrong key":  "Bearer " + sign(jwt.SigningMethodHS256, []byte("other"), time.Now().Add(time.Hour)),
		"none alg":   "Bearer " + sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, time.Now().Add(time.Hour)),
	} {
		w := call(header)
		require.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Equal(t, apierror.KindUnauthorized, envelope(t, w).Code, name)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.PATCH("/v1/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/items/1", nil)
	req.Header.Set("Origin", "http://pos.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}
