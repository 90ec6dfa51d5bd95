package testlog

import (
	"testing"

	"github.com/danmuck/obsidian/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Start routes the global logger into the test log for the duration of t.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	prev := log.Logger
	log.Logger = zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })
	log.Info().Str("test", t.Name()).Msg("start")
}
