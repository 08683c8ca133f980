package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/studysync/internal/flagx"
)

var knownFlags = []string{"-api", "-key", "-timeout", "-db", "-downloads", "-lang", "-log-level"}

// parseFlags populates Config fields from command-line flags. Only the flags
// listed in knownFlags are looked at; everything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("studysync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "backend REST base URL")
	fs.StringVar(&cfg.IdentityAPIKey, "key", cfg.IdentityAPIKey, "identity provider API key")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.LocalDBPath, "db", cfg.LocalDBPath, "local database path")
	fs.StringVar(&cfg.DownloadDir, "downloads", cfg.DownloadDir, "directory for downloaded exams")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "CLI language")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
