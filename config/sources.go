package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Environment variables read by FromEnv.
const (
	EnvAppName   = "CRAFTER_APP_NAME"
	EnvLogDir    = "CRAFTER_LOG_DIR"
	EnvExtension = "CRAFTER_LOG_EXTENSION"
	EnvLevel     = "CRAFTER_LOG_LEVEL"
	EnvVerbose   = "CRAFTER_VERBOSE"
)

// FromEnv loads the given .env files, then reads the CRAFTER_* variables.
// Missing .env files are ignored and variables already set in the process
// environment take precedence over them.
func FromEnv(files ...string) (Settings, error) {
	if len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	s := Settings{
		AppName:   os.Getenv(EnvAppName),
		LogDir:    os.Getenv(EnvLogDir),
		Extension: os.Getenv(EnvExtension),
		Level:     os.Getenv(EnvLevel),
	}
	if raw, ok := os.LookupEnv(EnvVerbose); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		s.Verbose = &v
	}
	return s, nil
}

// Flag names registered by RegisterFlags.
const (
	FlagAppName   = "app-name"
	FlagLogDir    = "log-dir"
	FlagExtension = "log-extension"
	FlagLevel     = "log-level"
	FlagVerbose   = "verbose"
)

// RegisterFlags adds the settings flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagAppName, "", "application name, used as log file prefix")
	fs.String(FlagLogDir, "", "directory for log files")
	fs.String(FlagExtension, "", "log file extension")
	fs.String(FlagLevel, "", "minimum log level (debug, info, warn, error)")
	fs.Bool(FlagVerbose, true, "write logs to stderr")
}

// FromFlags returns the settings given on the command line. Flags that were
// not set are left empty so they do not override other sources.
func FromFlags(fs *pflag.FlagSet) (Settings, error) {
	var s Settings
	var err error

	str := func(name string, dst *string) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetString(name)
	}
	str(FlagAppName, &s.AppName)
	str(FlagLogDir, &s.LogDir)
	str(FlagExtension, &s.Extension)
	str(FlagLevel, &s.Level)
	if err != nil {
		return Settings{}, err
	}

	if fs.Changed(FlagVerbose) {
		v, err := fs.GetBool(FlagVerbose)
		if err != nil {
			return Settings{}, err
		}
		s.Verbose = &v
	}
	return s, nil
}
