package config

import "time"

type Config struct {
	API     API     `yaml:"api"`
	UI      UI      `yaml:"ui"`
	Storage Storage `yaml:"storage"`
	Session Session `yaml:"session"`
}

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type UI struct {
	Port          int           `yaml:"port"`
	FlashLifetime time.Duration `yaml:"flash_lifetime"`
	NotifyChannel string        `yaml:"notify_channel"`
}

type Storage struct {
	TokenPath string `yaml:"token_path"`
	Ephemeral bool   `yaml:"ephemeral"`
}

type Session struct {
	// KeepTokenOnNetworkError keeps the persisted token when startup
	// revalidation fails at the transport level rather than by rejection.
	KeepTokenOnNetworkError bool `yaml:"keep_token_on_network_error"`
}

// Path is the location of the optional yaml config file.
type Path string

const DefaultPath Path = "./config/config.yaml"

func defaults() *Config {
	return &Config{
		API: API{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		UI: UI{
			Port:          8123,
			FlashLifetime: 3 * time.Minute,
		},
		Storage: Storage{
			TokenPath: ".cfptracker/token.json",
		},
	}
}

// New returns the defaults overlaid with the yaml file at p (if it exists)
// and then with environment overrides.
func New(p Path) (*Config, error) {
	cfg := defaults()

	if err := loadFile(string(p), cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}
