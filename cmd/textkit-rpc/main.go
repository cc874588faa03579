package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/textkit/internal/logger"
	"github.com/cognicore/textkit/internal/reload"
	"github.com/cognicore/textkit/internal/rpcserver"
	"github.com/cognicore/textkit/pkg/textkit/config"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/store/sqlite"
)

func main() {
	var (
		lexiconPath = flag.String("lexicon", "", "Sentiment lexicon file (optional)")
		intentsPath = flag.String("intents", "", "Intent rules file (optional)")
		watch       = flag.Bool("watch", false, "Reload the lexicon and intents files when they change")
		dbPath      = flag.String("db", "", "Archive every analysis to this database (optional)")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	cfg, err := loggerConfig(*logLevel, *logFormat)
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := &config.Loader{
		LexiconPath: *lexiconPath,
		IntentsPath: *intentsPath,
	}

	srv, cleanup, err := buildServer(ctx, loader, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if *watch {
		if len(loader.Paths()) == 0 {
			log.Fatal("--watch needs --lexicon or --intents")
		}
		go func() {
			if err := reload.Watch(ctx, loader, srv.SetDefault); err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
	}

	err = srv.Serve(ctx, stdio{in: os.Stdin, out: os.Stdout})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func loggerConfig(level, format string) (logger.Config, error) {
	cfg := logger.DefaultConfig()

	var err error
	if cfg.Level, err = logger.ParseLevel(level); err != nil {
		return cfg, err
	}
	if cfg.Format, err = logger.ParseFormat(format); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildServer wires the analyzer tables and optional archive into a server.
func buildServer(ctx context.Context, loader *config.Loader, dbPath string) (*rpcserver.Server, func(), error) {
	analyzer, err := loader.NewAnalyzer()
	if err != nil {
		return nil, nil, err
	}

	opts := rpcserver.Options{
		Analyzer:    analyzer,
		NewAnalyzer: loader.NewAnalyzer,
	}

	var st store.Store
	if dbPath != "" {
		st, err = sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, nil, err
		}
		opts.Archive = st
	}

	cleanup := func() {
		if st != nil {
			st.Close()
		}
	}
	return rpcserver.New(opts), cleanup, nil
}

type stdio struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (s stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	rerr := s.in.Close()
	werr := s.out.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
