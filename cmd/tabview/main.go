// Command tabview is an interactive table viewer for CSV and TSV files.
//
// Usage:
//
//	tabview [flags] [file]
//
// Without a file the table is read from stdin and keys from the terminal.
// With -listen the table is served to SSH clients instead of shown locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"

	"github.com/stlalpha/tabview/internal/ansi"
	"github.com/stlalpha/tabview/internal/config"
	"github.com/stlalpha/tabview/internal/grid"
	"github.com/stlalpha/tabview/internal/logging"
	"github.com/stlalpha/tabview/internal/sshserver"
	"github.com/stlalpha/tabview/internal/viewer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

// options is the configuration after flags have been applied.
type options struct {
	config.Config
	path       string
	configPath string
	outputMode ansi.OutputMode
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *config.Config, *string) {
	fs := flag.NewFlagSet("tabview", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config.Config
	configPath := fs.String("config", config.DefaultPath(), "Path to the JSON settings file")
	fs.StringVar(&cfg.Delimiter, "d", "", "Field delimiter (shorthand for -delimiter)")
	fs.StringVar(&cfg.Delimiter, "delimiter", "", "Field delimiter (default based on file extension)")
	fs.StringVar(&cfg.Quote, "q", "", "Quote character (shorthand for -quote)")
	fs.StringVar(&cfg.Quote, "quote", "", "Quote character (default \")")
	fs.StringVar(&cfg.Encoding, "encoding", "", "Input encoding: utf8, cp437, latin1, windows1252")
	fs.StringVar(&cfg.OutputMode, "output-mode", "", "Terminal output mode: auto (default), utf8, cp437")
	fs.StringVar(&cfg.LogFile, "log", "", "Write log messages to this file")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&cfg.Listen, "listen", "", "Serve the table over SSH on this address, e.g. :2222")
	fs.StringVar(&cfg.HostKeyPath, "hostkey", "", "SSH host key file, generated when missing")
	fs.IntVar(&cfg.MaxFailedLogins, "max-failed-logins", 0, "Failed SSH passwords per address before lockout (0 = unlimited)")
	fs.IntVar(&cfg.LockoutMinutes, "lockout", 0, "Minutes a locked out address is refused")
	fs.IntVar(&cfg.MaxSessions, "max-sessions", 0, "Maximum concurrent SSH viewers (0 = unlimited)")
	fs.BoolVar(&cfg.Watch, "watch", false, "Reload the file for new SSH viewers when it changes")
	fs.BoolVar(&cfg.LegacySSH, "legacy-ssh", false, "Allow older SSH algorithms for retro terminal clients")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: tabview [flags] [file]\n\n")
		fmt.Fprintf(out, "Interactive table viewer for the command line. Reads CSV or TSV from\n")
		fmt.Fprintf(out, "file, or from stdin when no file is given.\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintln(out)
		fmt.Fprint(out, viewer.KeyHelp())
	}
	return fs, &cfg, configPath
}

// parseOptions loads the settings file and applies the flags that were
// given on top of it.
func parseOptions(args []string, stderr io.Writer) (options, error) {
	fs, flagCfg, configPath := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return options{}, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d", "delimiter":
			cfg.Delimiter = flagCfg.Delimiter
		case "q", "quote":
			cfg.Quote = flagCfg.Quote
		case "encoding":
			cfg.Encoding = flagCfg.Encoding
		case "output-mode":
			cfg.OutputMode = flagCfg.OutputMode
		case "log":
			cfg.LogFile = flagCfg.LogFile
		case "debug":
			cfg.Debug = flagCfg.Debug
		case "listen":
			cfg.Listen = flagCfg.Listen
		case "hostkey":
			cfg.HostKeyPath = flagCfg.HostKeyPath
		case "max-failed-logins":
			cfg.MaxFailedLogins = flagCfg.MaxFailedLogins
		case "lockout":
			cfg.LockoutMinutes = flagCfg.LockoutMinutes
		case "max-sessions":
			cfg.MaxSessions = flagCfg.MaxSessions
		case "watch":
			cfg.Watch = flagCfg.Watch
		case "legacy-ssh":
			cfg.LegacySSH = flagCfg.LegacySSH
		}
	})
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	if _, err := grid.Decoding(cfg.Encoding); err != nil {
		return options{}, err
	}
	mode, err := ansi.ParseOutputMode(cfg.OutputMode)
	if err != nil {
		return options{}, err
	}

	return options{
		Config:     cfg,
		path:       fs.Arg(0),
		configPath: *configPath,
		outputMode: mode,
	}, nil
}

func (o options) gridOptions() grid.Options {
	delimiter := o.DelimiterRune()
	if delimiter == 0 {
		delimiter = grid.DefaultDelimiter(o.path)
	}
	return grid.Options{Delimiter: delimiter, Quote: o.QuoteRune(), Encoding: o.Encoding}
}

func run(args []string, stdin io.Reader, stderr io.Writer) int {
	// Nothing may reach the terminal before the log destination is known.
	log.SetOutput(io.Discard)

	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logging.DebugEnabled = opts.Debug || os.Getenv("DEBUG") == "1"
	var console io.Writer
	if opts.Listen != "" {
		console = stderr
	}
	logCloser, err := logging.Setup(opts.LogFile, console)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	logging.Debug("settings from %s: %+v", opts.configPath, opts.Config)

	load := func() (*grid.Grid, error) {
		return grid.LoadFile(opts.path, opts.gridOptions())
	}
	var g *grid.Grid
	if opts.path != "" {
		g, err = load()
		if err != nil {
			fmt.Fprintf(stderr, "Error reading file %q: %v\n", opts.path, err)
			return 1
		}
	} else {
		g, err = grid.Load(stdin, opts.gridOptions())
		if err != nil {
			fmt.Fprintf(stderr, "Error reading from stdin: %v\n", err)
			return 1
		}
	}
	log.Printf("INFO: Loaded %d rows with %d columns", g.Len(), g.Columns())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Listen != "" {
		err = serve(ctx, opts, g, load)
	} else {
		err = viewer.RunTerminal(ctx, g, opts.outputMode)
	}
	if err != nil {
		log.Printf("ERROR: %v", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// serve runs the SSH server until ctx is done.
func serve(ctx context.Context, opts options, g *grid.Grid, load func() (*grid.Grid, error)) error {
	source := sshserver.NewSource(g)
	if opts.Watch {
		if opts.path == "" {
			log.Printf("WARN: -watch needs a file, stdin cannot be reloaded")
		} else if err := source.Watch(opts.path, load); err != nil {
			return err
		}
	}
	defer source.Close()

	srv, err := sshserver.NewServer(sshserver.Config{
		Addr:                opts.Listen,
		HostKeyPath:         opts.HostKeyPath,
		PasswordHash:        opts.PasswordHash,
		MaxFailedLogins:     opts.MaxFailedLogins,
		LockoutDuration:     time.Duration(opts.LockoutMinutes) * time.Minute,
		MaxSessions:         opts.MaxSessions,
		OutputMode:          opts.outputMode,
		LegacySSHAlgorithms: opts.LegacySSH,
	}, source)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("INFO: SSH server ready - connect via: ssh -t <user>@<host> -p <port> (listening on %s)", opts.Listen)

	select {
	case err := <-errCh:
		return fmt.Errorf("SSH server: %w", err)
	case <-ctx.Done():
		log.Printf("INFO: Shutting down SSH server")
		if err := srv.Close(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	}
}
