package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	BackendURL   string `envconfig:"BACKEND_URL" required:"true"`
	BackendToken string `envconfig:"BACKEND_TOKEN"`

	GitHubToken string `envconfig:"GITHUB_TOKEN"`

	PrefsDatabaseURL string `envconfig:"PREFS_DATABASE_URL" default:"file:agentdeck.db"`
	PrefsAuthToken   string `envconfig:"PREFS_AUTH_TOKEN"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"3s"`
	ListTTL      time.Duration `envconfig:"LIST_TTL" default:"30s"`
}

func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("agentdeck", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
