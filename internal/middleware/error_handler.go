package middleware

import (
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler renders errors attached with c.Error as the JSON envelope and
// logs each one once. Persistence failures never leak their cause to the
// client; the support_code lets operators find the log line.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		reqID := c.GetString(RequestIDKey)
		status, body := apierror.Envelope(err, reqID)

		event := log.Warn()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Str("request_id", reqID).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Str("code", string(body.Code)).
			Str("reason", string(body.Reason)).
			Dict("details", detailsDict(err)).
			Err(err).
			Msg("request failed")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(status, body)
		}
	}
}

func detailsDict(err error) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range apierror.Details(err) {
		d.Str(k, v)
	}
	return d
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				reqID := c.GetString(RequestIDKey)
				log.Error().
					Str("request_id", reqID).
					Interface("panic", r).
					Msg("panic recovered")
				status, body := apierror.Envelope(nil, reqID)
				c.AbortWithStatusJSON(status, body)
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
