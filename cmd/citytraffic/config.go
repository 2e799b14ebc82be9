package main

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChicagoDave/citytraffic/internal/project"
)

// envPrefix namespaces environment overrides, e.g. CITYTRAFFIC_SEED.
const envPrefix = "CITYTRAFFIC"

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.Int64("seed", 0, "random seed (overrides simulation.random_seed)")
	f.Int("days", 0, "days to simulate (overrides simulation.days_to_simulate)")
	f.Bool("parallel", false, "simulate days concurrently")
	f.String("database-url", "", "postgres URL for the trip sink")
	f.String("log-level", "info", "log level: debug, info, warn, error")
	f.String("log-format", "text", "log format: text or json")
}

// settings layers environment variables over the command's flags.
func settings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}

func setupLogging(cmd *cobra.Command) error {
	v, err := settings(cmd)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch v.GetString("log-format") {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", v.GetString("log-format"))
	}
	return nil
}

// overrides collects the flag and environment values that were actually set.
func overrides(cmd *cobra.Command) (project.Overrides, error) {
	v, err := settings(cmd)
	if err != nil {
		return project.Overrides{}, err
	}
	var o project.Overrides
	if v.IsSet("seed") {
		seed := v.GetInt64("seed")
		o.Seed = &seed
	}
	if v.IsSet("days") {
		o.Days = v.GetInt("days")
	}
	if v.IsSet("parallel") {
		parallel := v.GetBool("parallel")
		o.Parallel = &parallel
	}
	o.DatabaseURL = v.GetString("database-url")
	return o, nil
}

// loadProject loads the project with the flag and environment overrides of
// cmd. Cancelling ctx stops the path index build.
func loadProject(ctx context.Context, cmd *cobra.Command, projectPath string) (*project.Project, error) {
	o, err := overrides(cmd)
	if err != nil {
		return nil, err
	}
	p, err := project.Load(ctx, projectPath, o)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return p, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
