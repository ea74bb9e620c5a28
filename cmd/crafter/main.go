// Command crafter configures the application logger from a settings file,
// the environment and flags, then writes the product catalogue to it.
//
// Usage:
//
//	crafter [--config settings.yaml] [--env-file .env] [--log-dir logs] [--log-level debug]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ARTM2000/crafter"
	"github.com/ARTM2000/crafter/config"
	"github.com/ARTM2000/crafter/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "crafter: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("crafter", pflag.ContinueOnError)
	settingsPath := flags.String("config", "", "settings file (.yaml, .yml, .json or .jsonc)")
	envFile := flags.String("env-file", ".env", "dotenv file to load before reading CRAFTER_* variables")
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var fromFile config.Settings
	if *settingsPath != "" {
		var err error
		if fromFile, err = config.ReadFile(*settingsPath); err != nil {
			return err
		}
	}
	fromEnv, err := config.FromEnv(*envFile)
	if err != nil {
		return err
	}
	fromFlags, err := config.FromFlags(flags)
	if err != nil {
		return err
	}

	g, err := config.Overlay(fromFile, fromEnv, fromFlags).Group()
	if err != nil {
		return err
	}
	defer logging.ResetLoggers()

	crafter.SetDefaultGroups(logging.Providers())
	f := crafter.Default()
	return f.WithProviders(g, func(s *crafter.Scope) error {
		if _, err := crafter.Resolve[logging.FileHandlerConfigured](s); err != nil {
			return err
		}
		l, err := crafter.Resolve[*logging.Logger](s)
		if err != nil {
			return err
		}

		for _, k := range f.Catalogue() {
			l.Zap().Debug("product type", zap.Stringer("key", k))
		}
		l.Zap().Info("logger configured", zap.Int("products", f.Len()))
		return nil
	})
}
