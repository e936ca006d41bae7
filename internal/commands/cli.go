// Package commands implements the mdtrans command line.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gerunddev/mdtrans/internal/config"
	"github.com/gerunddev/mdtrans/internal/deepl"
	"github.com/gerunddev/mdtrans/internal/logger"
)

// Version is the released version of mdtrans.
const Version = "0.1.0"

// CLI defines the command-line interface for mdtrans.
type CLI struct {
	Globals

	Translate TranslateCmd `cmd:"" help:"Translate a Markdown file or directory"`
	Glossary  GlossaryCmd  `cmd:"" help:"Manage DeepL glossaries"`
	Status    StatusCmd    `cmd:"" help:"List recorded translations and whether they are stale"`
	Usage     UsageCmd     `cmd:"" help:"Show the character usage of the API key"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `short:"c" help:"Path to deepl.toml (default: search ./deepl.toml, ~/.deepl.toml, the XDG config dir)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

// env is what a command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	log    *logger.Logger
	client *deepl.Client
	out    io.Writer
	close  func()
}

func (g *Globals) setup() (*env, error) {
	var (
		cfg  *config.Config
		path = g.Config
		err  error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.Find()
	}
	if errors.Is(err, config.ErrNotFound) {
		return nil, fmt.Errorf("%w (searched %s)", err, strings.Join(config.SearchPaths(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if g.Verbose {
		level = log.DebugLevel
	}

	writers := []io.Writer{g.stderr()}
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = func() { f.Close() }
	}

	lg := logger.NewMultiLogger(level, writers...)
	lg.ConfigLoaded(path, cfg.ProjectName, cfg.IsFreeAPIKey())

	return &env{
		cfg:    cfg,
		log:    lg,
		client: deepl.New(cfg.APIKey, deepl.WithBaseURL(cfg.Endpoint)),
		out:    g.stdout(),
		close:  closeFn,
	}, nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout(), "mdtrans v%s\n", Version)
	return nil
}
