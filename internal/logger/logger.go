package logger

import (
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing to stderr. format "json" selects the JSON formatter,
// anything else the text formatter. Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

const entryContextKey = "logger"

// RequestLogger logs one entry per request. 5xx responses log at error, 4xx at warn.
// Handlers reach a logger tagged with the request ID through FromContext.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		BeforeNextFunc: func(c echo.Context) {
			c.Set(entryContextKey, log.WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}

			switch {
			case v.Status >= 500:
				entry.Error("response")
			case v.Status >= 400:
				entry.Warn("response")
			default:
				entry.Info("response")
			}
			return nil
		},
	})
}

// FromContext returns the request's logger, or the standard logger outside
// RequestLogger.
func FromContext(c echo.Context) logrus.FieldLogger {
	if entry, ok := c.Get(entryContextKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.StandardLogger()
}
