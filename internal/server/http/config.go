package httpserver

import "github.com/caarlos0/env/v11"

// Config is the play server's environment configuration. Command line
// flags in cmd/cathedral-local override these values.
type Config struct {
	Addr         string `env:"CATHEDRAL_ADDR"           envDefault:":2888"`
	WebDir       string `env:"CATHEDRAL_WEB_DIR"        envDefault:"web"`
	MobileWebDir string `env:"CATHEDRAL_WEB_MOBILE_DIR"`
	ModelPath    string `env:"CATHEDRAL_MODEL"`
	LibPath      string `env:"CATHEDRAL_ORT_LIB"`
}

// LoadConfig reads the environment, leaving unset values at their
// defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
