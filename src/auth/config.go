package auth

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ValidTokens is the comma-separated allow-list. The default keeps the
	// DEV tokens both sides ship with so a local pair works out of the box.
	ValidTokens string `envconfig:"TFA_VALID_TOKENS" default:"TREA_DEV_TOKEN_001,FWEA_DEV_TOKEN_001"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
