package config

import (
	"os"

	"github.com/pkg/errors"
)

// Template returns a commented starter config.
func Template() string {
	return configTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o600)
}

const configTemplate = `[codec]
# exact grows one byte at a time, geometric doubles.
growth = "exact"
initial_capacity = 1
# 0 means unlimited.
max_buffer_bytes = 0
lenient_bool = false

[frame]
max_frame_bytes = 2097151

[[messages]]
id = 0
name = "handshake"
descriptor = "is2i"

[[messages]]
id = 3
name = "chat"
descriptor = "sb"

[[messages]]
id = 33
name = "keep_alive"
descriptor = "8"
`
