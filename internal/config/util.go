package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	errConfigIsDir = errors.New("config path is dir")
)

func loadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	filename, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	finfo, err := os.Stat(filename)
	if errors.Is(err, fs.ErrNotExist) {
		// a missing file means defaults only
		return nil
	}
	if err != nil {
		return err
	}
	if finfo.IsDir() {
		return errConfigIsDir
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CFP_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CFP_TOKEN_PATH"); v != "" {
		cfg.Storage.TokenPath = v
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
}
