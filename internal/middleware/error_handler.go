package middleware

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// statusClientClosed is nginx's code for a client that went away.
const statusClientClosed = 499

// ErrorHandler logs errors attached with c.Error. Handlers normally write
// their own response; when they did not, the client gets a generic 500, or
// nothing if it already hung up.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if errors.Is(err, context.Canceled) {
			requestLog(c).Debug().Err(err).Msg("http: client closed request")
			if !c.Writer.Written() {
				c.AbortWithStatus(statusClientClosed)
			}
			return
		}

		requestLog(c).Error().Err(err).Int("errors", len(c.Errors)).Msg("http: handler error")
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			requestLog(c).Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("http: panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		}()
		c.Next()
	}
}

// Logger writes one line per request. Probes (/health, /metrics) log at debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		lvl := zerolog.InfoLevel
		switch {
		case status >= 500:
			lvl = zerolog.ErrorLevel
		case status >= 400:
			lvl = zerolog.WarnLevel
		case c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics":
			lvl = zerolog.DebugLevel
		}

		requestLog(c).WithLevel(lvl).
			Str("route", c.FullPath()).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http: request")
	}
}

func requestLog(c *gin.Context) *zerolog.Logger {
	l := log.With().
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Logger()
	return &l
}
