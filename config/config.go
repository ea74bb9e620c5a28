// Package config turns configuration files, environment variables and
// command-line flags into crafter provider groups for the logging
// products.
//
// Every source produces a [Settings] value; [Overlay] combines them with
// later sources winning, and [Settings.Group] turns the result into
// constant providers to open a scope with:
//
//	s := config.Overlay(fileSettings, envSettings, flagSettings)
//	g, err := s.Group()
//	if err != nil {
//	    return err
//	}
//	scope := factory.OpenScope(g)
//	defer scope.Close()
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ARTM2000/crafter"
	"github.com/ARTM2000/crafter/logging"
)

// Settings holds the configurable logging products. Empty fields are left
// to the providers' defaults.
type Settings struct {
	// AppName is the application name and default log file prefix.
	AppName string `yaml:"app_name" json:"app_name"`

	// LogDir is the directory log files are written to.
	LogDir string `yaml:"log_dir" json:"log_dir"`

	// Extension is the log file extension, without the dot.
	Extension string `yaml:"extension" json:"extension"`

	// Level is the minimum level of emitted records: debug, info, warn or
	// error.
	Level string `yaml:"level" json:"level"`

	// Verbose enables the stream handler. Nil keeps the default.
	Verbose *bool `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// ParseYAML parses settings from YAML.
func ParseYAML(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing YAML settings: %w", err)
	}
	return s, nil
}

// ParseJSONC parses settings from JSON with comments and trailing commas.
func ParseJSONC(data []byte) (Settings, error) {
	var s Settings
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return Settings{}, fmt.Errorf("parsing JSONC settings: %w", err)
	}
	return s, nil
}

// ReadFile reads settings from path. The format is chosen by extension:
// .yaml and .yml are YAML, .json and .jsonc are JSONC.
func ReadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json", ".jsonc":
		return ParseJSONC(data)
	default:
		return Settings{}, fmt.Errorf("reading settings: unsupported file extension %q", ext)
	}
}

// Overlay merges layers left to right. Non-empty fields of later layers
// replace those of earlier ones.
func Overlay(layers ...Settings) Settings {
	var out Settings
	for _, l := range layers {
		if l.AppName != "" {
			out.AppName = l.AppName
		}
		if l.LogDir != "" {
			out.LogDir = l.LogDir
		}
		if l.Extension != "" {
			out.Extension = l.Extension
		}
		if l.Level != "" {
			out.Level = l.Level
		}
		if l.Verbose != nil {
			v := *l.Verbose
			out.Verbose = &v
		}
	}
	return out
}

// Group returns constant providers for every set field.
func (s Settings) Group() (*crafter.Group, error) {
	values := map[crafter.Key]any{}
	if s.AppName != "" {
		values[crafter.KeyOf[logging.AppName]()] = logging.AppName(s.AppName)
	}
	if s.LogDir != "" {
		values[crafter.KeyOf[logging.LogDirectoryPath]()] = logging.LogDirectoryPath(s.LogDir)
	}
	if s.Extension != "" {
		values[crafter.KeyOf[logging.LogFileExtension]()] = logging.LogFileExtension(strings.TrimPrefix(s.Extension, "."))
	}
	if s.Level != "" {
		level, err := zapcore.ParseLevel(s.Level)
		if err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
		values[crafter.KeyOf[zapcore.Level]()] = level
	}
	if s.Verbose != nil {
		values[crafter.KeyOf[logging.Verbose]()] = logging.Verbose(*s.Verbose)
	}

	g := crafter.NewGroup()
	for k, v := range values {
		if err := g.Constant(k, v); err != nil {
			return nil, err
		}
	}
	return g, nil
}
