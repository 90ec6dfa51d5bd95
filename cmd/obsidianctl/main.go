package main

import (
	"os"

	"github.com/danmuck/obsidian/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime()
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("obsidianctl failed")
	}
}
