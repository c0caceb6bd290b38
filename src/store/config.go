package store

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// PersistPath is the JSONL durable log. Empty disables persistence and
	// the store runs memory-only.
	PersistPath string `envconfig:"TFA_PERSIST_PATH" default:"/tmp/trea_fwea_events.jsonl"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
