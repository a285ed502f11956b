package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvName      = "SIMPLIFY_ENV"
	EnvOutput    = "SIMPLIFY_OUTPUT"
	EnvLogLevel  = "SIMPLIFY_LOG_LEVEL"
	EnvLogFormat = "SIMPLIFY_LOG_FORMAT"
)

// Settings are the values taken from the process environment and .env
// files. Empty fields were not set.
type Settings struct {
	Env       string
	Output    string
	LogLevel  string
	LogFormat string
}

// LoadSettings reads files in order as .env files, skipping missing ones.
// Variables already in the process environment win, then earlier files.
func LoadSettings(files ...string) (Settings, error) {
	fileEnv := make(map[string]string)
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := fileEnv[k]; !ok {
				fileEnv[k] = v
			}
		}
	}

	return SettingsFrom(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileEnv[key]
	}), nil
}

// SettingsFrom builds Settings with getenv.
func SettingsFrom(getenv func(string) string) Settings {
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}
	return Settings{
		Env:       get(EnvName),
		Output:    get(EnvOutput),
		LogLevel:  get(EnvLogLevel),
		LogFormat: get(EnvLogFormat),
	}
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
