/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ayoublk/blindtest/playback"
)

const (
	storageFile   = "file"
	storageSQLite = "sqlite"
	storageMemory = "memory"
)

type Config struct {
	bind           string
	dataDir        string
	demo           bool
	port           int
	prefix         string
	profile        bool
	queueSize      int
	sessionTimeout time.Duration
	storage        string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.storage {
	case storageFile, storageSQLite:
		if c.dataDir == "" {
			return fmt.Errorf("--data-dir is required for %s storage", c.storage)
		}
	case storageMemory:
	default:
		return fmt.Errorf("invalid storage (must be one of %s, %s, %s): %q", storageFile, storageSQLite, storageMemory, c.storage)
	}
	if c.queueSize < playback.MinQueueSize {
		return fmt.Errorf("invalid queue size (must be at least %d): %d", playback.MinQueueSize, c.queueSize)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BLINDTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "blindtest",
		Short:         "Host a blind test party game: songs, reveals, and scores on a shared screen.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BLINDTEST_BIND)")
	fs.StringVarP(&cfg.dataDir, "data-dir", "d", "./data", "directory holding saved games (env: BLINDTEST_DATA_DIR)")
	fs.BoolVar(&cfg.demo, "demo", false, "seed new games with demo songs (env: BLINDTEST_DEMO)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: BLINDTEST_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BLINDTEST_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: BLINDTEST_PROFILE)")
	fs.IntVar(&cfg.queueSize, "queue-size", 32, "playback commands kept while the player widget loads (env: BLINDTEST_QUEUE_SIZE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are unloaded from memory (env: BLINDTEST_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.storage, "storage", storageFile, "where games are saved: file, sqlite, or memory (env: BLINDTEST_STORAGE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: BLINDTEST_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: BLINDTEST_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BLINDTEST_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BLINDTEST_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("blindtest v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
