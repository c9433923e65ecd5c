package uci

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// OpenDiagnostics returns a logger that appends timestamped JSON lines to
// path through a non-blocking writer, and the function that flushes and
// closes it. An empty path disables the sink.
func OpenDiagnostics(path string) (zerolog.Logger, func() error, error) {
	if path == "" {
		return zerolog.Nop(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() error { return nil }, fmt.Errorf("opening diagnostic log: %w", err)
	}
	w := diode.NewWriter(f, 1000, 10*time.Millisecond, func(missed int) {
		log.Warn().Int("missed", missed).Msg("diagnostic log dropped messages")
	})
	l := zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return l, w.Close, nil
}
