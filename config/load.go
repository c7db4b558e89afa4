package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File is the YAML config file layout. Environment variables take precedence
// over every value set here.
type File struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Token      string `yaml:"token"`
	ServerInfo *bool  `yaml:"server_info"`
}

// Load resolves the configuration for the running process: it loads ./.env
// when present, then applies the optional YAML file named by CONFLUENCE_CONFIG
// underneath the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Err: fmt.Errorf("load %s: %w", defaultEnvFile, err)}
	}
	return LoadWith(os.Getenv, os.ReadFile)
}

// LoadWith is Load without the .env step, reading the environment and files
// through the given functions.
func LoadWith(getenv func(string) string, readFile func(string) ([]byte, error)) (*Config, error) {
	path := getenv(EnvConfigFile)
	if path == "" {
		return Resolve(getenv)
	}

	data, err := readFile(path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read config file: %w", err)}
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &Error{Err: fmt.Errorf("parse config file %s: %w", path, err)}
	}

	cfg, err := Resolve(file.overlay(getenv))
	if err != nil {
		return nil, err
	}

	if file.ServerInfo != nil {
		if *file.ServerInfo {
			cfg.InfoCapability = InfoServerInfo
		} else {
			cfg.InfoCapability = InfoConnectivityOnly
		}
	}

	return cfg, nil
}

// overlay returns a lookup that prefers the environment and falls back to
// the file.
func (f *File) overlay(getenv func(string) string) func(string) string {
	values := map[string]string{
		EnvURL:      f.URL,
		EnvUsername: f.Username,
		EnvPassword: f.Password,
		EnvToken:    f.Token,
	}
	aliases := map[string]string{
		EnvURL:   EnvBaseURL,
		EnvToken: EnvAPIToken,
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		// An aliased variable in the environment still beats the file.
		if alias, ok := aliases[key]; ok && getenv(alias) != "" {
			return ""
		}
		return values[key]
	}
}
