package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/altin/linesearch/internal/cache"
	"github.com/altin/linesearch/internal/config"
	"github.com/altin/linesearch/internal/corpus"
	"github.com/altin/linesearch/internal/logger"
	"github.com/altin/linesearch/internal/model"
	"github.com/altin/linesearch/internal/repl"
	"github.com/altin/linesearch/internal/session"
	"github.com/altin/linesearch/internal/tui"
	"github.com/altin/linesearch/internal/ui"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

const usageLine = "Usage: linesearch [flags] input1.txt input2.txt ..."

// ExitError asks main to terminate with Code. Message, when set, goes to
// stderr first.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func main() {
	err := run(context.Background(), os.Stdin, os.Stdout, os.Stderr, os.Args[1:])
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(os.Stderr, exitErr.Message)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("linesearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageLine)
		fs.PrintDefaults()
	}

	defaults := config.Default()
	configPath := fs.String("config", os.Getenv("LINESEARCH_CONFIG"), "YAML config file (env LINESEARCH_CONFIG)")
	prompt := fs.String("prompt", defaults.Prompt, "Prompt shown before each command")
	emptyTerms := fs.String("empty-terms", defaults.EmptyTerms, "Empty search terms: skip or match")
	plain := fs.Bool("plain", false, "Use the line-based prompt even on a terminal")
	logLevel := fs.String("log-level", "", "Diagnostic log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Write diagnostic logs as JSON to this file")
	cacheDir := fs.String("cache-dir", defaults.Cache.Dir, "Directory for cached GitHub job logs")
	cacheSizeMB := fs.Int("cache-size", defaults.Cache.SizeMB, "Max log cache size in MB")
	cacheTTL := fs.Duration("cache-ttl", defaults.Cache.TTL, "Log cache TTL")
	clearCache := fs.Bool("clear-cache", false, "Remove cached job logs before loading")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &ExitError{Code: 1}
	}

	if *showVersion {
		fmt.Fprintln(stdout, "linesearch", version)
		return nil
	}

	cfg := defaults
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			return &ExitError{Code: 1, Message: fmt.Sprintf("Error: %v", err)}
		}
		cfg = fileCfg
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "prompt":
			cfg.Prompt = *prompt
		case "empty-terms":
			cfg.EmptyTerms = *emptyTerms
		case "plain":
			cfg.Plain = *plain
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		case "cache-dir":
			cfg.Cache.Dir = *cacheDir
		case "cache-size":
			cfg.Cache.SizeMB = *cacheSizeMB
		case "cache-ttl":
			cfg.Cache.TTL = *cacheTTL
		}
	})
	if fs.NArg() > 0 {
		cfg.Sources = fs.Args()
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoSources) {
			fs.Usage()
			return &ExitError{Code: 1}
		}
		return &ExitError{Code: 1, Message: fmt.Sprintf("Error: %v", err)}
	}

	tuiMode := !cfg.Plain && isTerminal(stdin) && isTerminal(stdout)
	console := stderr
	if tuiMode {
		console = nil
	}
	log, closeLog, err := logger.New(cfg, console)
	if err != nil {
		return &ExitError{Code: 1, Message: fmt.Sprintf("Error: %v", err)}
	}
	defer closeLog()

	// Registered before loading so an early Ctrl+C still reaches the
	// exit handler instead of killing the process.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	styles := ui.NewStyles(stdout)
	loader := corpus.NewLoader(stdout,
		corpus.WithStyles(styles),
		corpus.WithLogger(log),
		corpus.WithGitHub(corpus.NewGitHubSources(corpus.DefaultClientFactory, openCache(cfg, *clearCache, stderr, log), log)),
	)

	start := time.Now()
	loaded, report, interrupted := loadCorpus(ctx, loader, cfg.Sources, interrupts)
	log.Info("corpus loaded",
		zap.Int("sources", report.Loaded),
		zap.Int("empty", report.Empty),
		zap.Int("failed", report.Failed),
		zap.Int("lines", report.Lines),
		zap.Bool("interrupted", interrupted),
		zap.Duration("took", time.Since(start)),
	)

	sess := session.New(loaded, session.Options{
		EmptyTerms: cfg.EmptyTermsPolicy(),
		Styles:     &styles,
		Logger:     log,
	})

	if interrupted {
		sess.Interrupt(stdout)
		return nil
	}
	if tuiMode {
		return runTUI(ctx, stdin, stdout, sess, styles, cfg.Prompt, interrupts)
	}
	return repl.New(stdin, stdout, sess,
		repl.WithPrompt(cfg.Prompt),
		repl.WithInterrupts(interrupts),
	).Run(ctx)
}

// loadCorpus stops loading at the first interrupt and reports whether one
// arrived. An interrupt that races the end of loading stays in the channel
// for the command loop.
func loadCorpus(ctx context.Context, loader *corpus.Loader, ids []string, interrupts <-chan os.Signal) (*model.Corpus, *corpus.LoadReport, bool) {
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	interrupted := make(chan bool, 1)
	go func() {
		select {
		case <-interrupts:
			cancel()
			interrupted <- true
		case <-done:
			interrupted <- false
		}
	}()

	loaded, report := loader.Load(loadCtx, ids)
	close(done)
	return loaded, report, <-interrupted
}

// openCache returns nil when GitHub sources are not requested or the cache
// directory cannot be created; logs are then downloaded without caching.
func openCache(cfg config.Config, purge bool, stderr io.Writer, log *zap.Logger) *cache.LogCache {
	needed := purge
	for _, src := range cfg.Sources {
		if strings.HasPrefix(src, corpus.GitHubPrefix) {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	lc, err := cache.NewLogCache(cfg.Cache.Dir, cfg.Cache.SizeMB, cfg.Cache.TTL)
	if err != nil {
		fmt.Fprintf(stderr, "Cache error: %v\n", err)
		return nil
	}
	if purge {
		if err := lc.DeleteAll(); err != nil {
			fmt.Fprintf(stderr, "Cache error: %v\n", err)
		}
	}
	if err := lc.Evict(); err != nil {
		log.Warn("cache eviction failed", zap.Error(err))
	}
	size, err := lc.TotalSize()
	if err != nil {
		log.Warn("cache size unknown", zap.Error(err))
		return lc
	}
	log.Debug("log cache ready",
		zap.String("dir", cfg.Cache.Dir),
		zap.Int64("bytes", size),
		zap.Int("limit_mb", cfg.Cache.SizeMB),
	)
	return lc
}

func runTUI(ctx context.Context, stdin io.Reader, stdout io.Writer, sess *session.Session, styles ui.Styles, prompt string, interrupts <-chan os.Signal) error {
	p := tea.NewProgram(tui.NewApp(sess, styles, prompt),
		tea.WithContext(ctx),
		tea.WithInput(stdin),
		tea.WithOutput(stdout),
		tea.WithoutSignalHandler(),
	)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-interrupts:
				p.Send(ui.InterruptMsg{})
			case <-stop:
				return
			}
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	// The program can also end without an exit command, e.g. when its
	// input closes; the summary is still owed.
	if !sess.Done() {
		sess.Exit(stdout)
	}
	return nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
