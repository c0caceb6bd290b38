package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ArchiveDSN enables the relational event archive when set. For the
	// sqlite driver this is a file path; for postgres a full DSN.
	ArchiveDSN    string `envconfig:"TFA_ARCHIVE_DSN" default:""`
	ArchiveDriver string `envconfig:"TFA_ARCHIVE_DRIVER" default:"sqlite"` // "sqlite" or "postgres"
	GormLogLevel  int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
