package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Heidric/guest-self-service/pkg/log"
	"github.com/go-chi/chi/middleware"
	"github.com/mssola/useragent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It discards everything until Initialize is called.
var Log = nop()

type Logger struct {
	zl zerolog.Logger
}

func nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func Initialize(cfg *log.Config) (*Logger, error) {
	return initialize(cfg, os.Stdout)
}

func initialize(cfg *log.Config, out io.Writer) (*Logger, error) {
	if cfg == nil {
		return nil, errors.New("logger config is nil")
	}
	cfg.SetDefault()

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zl := zerolog.New(out).
		Level(cfg.ParseLevel()).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Logger()

	Log = &zl

	return &Logger{zl: zl}, nil
}

func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Middleware writes one access line per request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var ev *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				ev = Log.Error()
			case status >= http.StatusBadRequest:
				ev = Log.Warn()
			default:
				ev = Log.Info()
			}

			ev.Str("name", "http").
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Str("device", deviceLabel(r.UserAgent())).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()

		next.ServeHTTP(ww, r.WithContext(Log.WithContext(r.Context())))
	})
}

// deviceLabel turns a User-Agent into a short "Browser on OS" label.
func deviceLabel(raw string) string {
	if raw == "" {
		return "unknown"
	}

	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot"
	}

	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser == "" && os == "":
		return "unknown"
	case os == "":
		return browser
	case browser == "":
		return os
	}
	return browser + " on " + os
}
