// ABOUTME: Root Cobra command and global flags for the riddleking CLI.
// ABOUTME: Loads config, builds the history, source, selector, and formatter, then runs the bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/riddleking/internal/bot"
	"github.com/2389-research/riddleking/internal/config"
	"github.com/2389-research/riddleking/internal/formatter"
	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/publisher"
	"github.com/2389-research/riddleking/internal/selector"
	"github.com/2389-research/riddleking/internal/source"
	"github.com/2389-research/riddleking/internal/storage"
)

var globalConfig *config.Config
var globalLogger *logging.Logger
var globalHistory storage.HistoryStore
var globalSelector *selector.Selector
var globalFormatter *formatter.Formatter

// Flags
var (
	flagConfigFile string
	flagLogLevel   string
	flagTest       bool
	flagDryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "riddleking",
	Short: "Daily riddle poster for X",
	Long: `🧩 Riddle King

Posts one unposted riddle a day to X and remembers what it has posted.
Riddles come from the built-in list, a WordPress site, or an RSS feed.

Run without flags to start the daily schedule, or with --test to post once now.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.LoadFile(flagConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		globalConfig = cfg

		logger, err := logging.New(logging.Options{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			JSON:       cfg.Log.JSON,
		})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		globalLogger = logger

		historyPath, err := cfg.GetHistoryPath()
		if err != nil {
			return fmt.Errorf("failed to resolve history path: %w", err)
		}
		history, err := storage.Open(cfg.History.Backend, historyPath, logger.WithPrefix("history"))
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		globalHistory = history

		src, err := buildSource(cfg)
		if err != nil {
			return err
		}

		maxAttempts, resetThreshold := cfg.EffectiveSelection()
		globalSelector = selector.New(src, history, selector.Options{
			MaxAttempts:    maxAttempts,
			Backoff:        cfg.Selection.Backoff,
			ResetThreshold: resetThreshold,
		}, logger.WithPrefix("selector"))

		globalFormatter = formatter.New(formatter.Template{
			Heading:      cfg.Post.Heading,
			CallToAction: cfg.Post.CallToAction,
			LinkLabel:    cfg.Post.LinkLabel,
			LinkBase:     cfg.Post.LinkBase,
			Hashtags:     cfg.Post.Hashtags,
			MaxLength:    cfg.Post.MaxLength,
		})

		return nil
	},
	RunE: runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Config file (default $XDG_CONFIG_HOME/riddleking/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Log posts instead of sending them to X")
	rootCmd.Flags().BoolVar(&flagTest, "test", false, "Post one riddle now and exit")
}

// execute runs the command tree and releases the history store and log file
// whether or not the command succeeded. Cobra skips post-run hooks on error.
func execute() error {
	defer closeGlobals()
	return rootCmd.Execute()
}

func closeGlobals() {
	if globalHistory != nil {
		_ = globalHistory.Close()
		globalHistory = nil
	}
	if globalLogger != nil {
		_ = globalLogger.Close()
		globalLogger = nil
	}
}

// buildSource creates the configured riddle source.
func buildSource(cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Type {
	case source.TypeStatic:
		catalogPath, err := cfg.GetCatalogPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
		}
		if catalogPath == "" {
			return source.NewStatic(source.DefaultCatalog()), nil
		}
		items, err := source.LoadCatalog(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load riddle catalog: %w", err)
		}
		return source.NewStatic(items), nil
	case source.TypeFeed:
		return source.NewFeed(cfg.Source.FeedURL, cfg.Source.Timeout), nil
	default:
		return source.NewWordPress(cfg.Source.WordPressURL, cfg.Source.BatchSize, cfg.Source.Timeout), nil
	}
}

// newPublisher returns the X client, or the dry-run publisher when --dry-run is set.
func newPublisher() (publisher.Publisher, error) {
	if flagDryRun {
		return publisher.NewDryRun(globalLogger.WithPrefix("dry-run")), nil
	}
	if !globalConfig.HasCredentials() {
		return nil, fmt.Errorf("X credentials are not configured: run 'riddleking setup' or set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET")
	}
	x := globalConfig.X
	return publisher.NewXClient(x.APIURL, publisher.Credentials{
		APIKey:       x.APIKey,
		APISecret:    x.APISecret,
		AccessToken:  x.AccessToken,
		AccessSecret: x.AccessSecret,
	}, globalConfig.Source.Timeout), nil
}

func newCycle(pub publisher.Publisher) *bot.Cycle {
	return bot.NewCycle(globalSelector, globalFormatter, pub, globalHistory, globalLogger.WithPrefix("cycle"))
}

func runBot(cmd *cobra.Command, args []string) error {
	pub, err := newPublisher()
	if err != nil {
		return err
	}
	cycle := newCycle(pub)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if flagTest {
		return runOnce(ctx, cycle)
	}
	return runScheduled(ctx, cycle)
}

func runOnce(ctx context.Context, cycle *bot.Cycle) error {
	fmt.Println("=== TEST MODE ===")
	fmt.Println("Posting riddle now...")
	fmt.Println()

	record, err := cycle.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Tweet ID: %s\n", record.PostID)
	fmt.Println()
	fmt.Println("=== TEST COMPLETE ===")
	return nil
}
