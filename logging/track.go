package logging

import (
	"log/slog"
	"time"
)

// Track instruments a pipeline step. It logs the start at debug level and
// returns a func to be deferred with the step's error: on success it logs
// the duration at info level, on failure at error level.
//
//	var err error
//	defer logging.Track(log, "fetch page", slog.String("url", url))(err)
//
// Because deferred arguments are evaluated at defer time, call the returned
// func explicitly in a closure when err is assigned later:
//
//	done := logging.Track(log, "fetch page")
//	defer func() { done(err) }()
func Track(log *slog.Logger, op string, attrs ...any) func(error) {
	start := time.Now()
	log.Debug(op+" started", attrs...)
	return func(err error) {
		elapsed := time.Since(start).Round(time.Millisecond)
		fields := append(attrs, slog.Duration("elapsed", elapsed))
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			log.Error(op+" failed", fields...)
			return
		}
		log.Info(op+" finished", fields...)
	}
}
