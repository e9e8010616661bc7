package auth

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AdminUser string `envconfig:"ADMIN_USER" default:"admin"`
	// bcrypt hash, e.g. from `signalrelay hash-password`. Empty locks the status API.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`
	Realm             string `envconfig:"ADMIN_REALM" default:"signalrelay"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
