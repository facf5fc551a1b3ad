// Package commands holds the navkit subcommands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/sources/site"
)

// Global is shared by every subcommand.
type Global struct {
	Logger logger.Logger
	Out    io.Writer
	Fs     afero.Fs
}

// CLI is the root command line. serve runs when no command is given.
type CLI struct {
	LogLevel string           `name:"log-level" help:"Log level for offline commands (serve reads NAVKIT_LOG_LEVEL)" default:"warn" enum:"debug,info,warn,error"`
	Pretty   bool             `help:"Human readable logs"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve    ServeCmd    `cmd:"" default:"1" help:"Serve the navigation model over HTTP (configured from NAVKIT_* variables)"`
	Validate ValidateCmd `cmd:"" help:"Check a site declaration and report every problem"`
	Export   ExportCmd   `cmd:"" help:"Print the normalized navigation model"`
	Resolve  ResolveCmd  `cmd:"" help:"Show which sidebar applies to a page path"`
}

// SiteFlags are the flags of every command reading a declaration offline.
type SiteFlags struct {
	File       string `short:"f" help:"Site declaration" default:"site.yaml" type:"path"`
	BcryptCost int    `name:"bcrypt-cost" help:"Cost used to hash encrypt passwords" default:"4"`
}

func (f SiteFlags) load(g *Global) (*domain.Site, error) {
	doc, err := site.NewLoader(g.Fs, f.File).Load()
	if err != nil {
		return nil, err
	}
	return site.NewMapper(f.BcryptCost).MapSite(doc, f.File)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// configErrors extracts the individual declaration problems from err.
func configErrors(err error) domain.ConfigErrors {
	var errs domain.ConfigErrors
	if errors.As(err, &errs) {
		return errs
	}
	var one *domain.ConfigError
	if errors.As(err, &one) {
		return domain.ConfigErrors{one}
	}
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
