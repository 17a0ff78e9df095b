package main

import (
	"context"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/converso/pkg/completion"
	"github.com/go-go-golems/converso/pkg/conversation"
	"github.com/go-go-golems/converso/pkg/events"
	"github.com/go-go-golems/converso/pkg/settings"
	"github.com/go-go-golems/converso/pkg/store"
)

const uiTopic = "ui"

var (
	configFile string
	logFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "converso",
	Short: "Terminal chat client with persistent conversation sessions",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to a yaml config file")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Log at debug level and trace raw events")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	s, err := settings.Load(configFile)
	if err != nil {
		return err
	}
	if verbose {
		s.Log.Level = "debug"
	}
	if err := setupLogging(s); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	storeClient := store.NewRESTClient(s.Store.BaseURL, s.Store.APIKey,
		store.WithTimeout(time.Duration(s.Store.TimeoutSeconds)*time.Second))

	var completionOptions []completion.Option
	if s.Chat.BaseURL != "" {
		completionOptions = append(completionOptions, completion.WithBaseURL(s.Chat.BaseURL))
	}
	completer, err := completion.NewCompleter(s.Chat.Model, s.Chat.APIKey, completionOptions...)
	if err != nil {
		return err
	}

	router, err := events.NewEventRouter(events.WithVerbose(verbose))
	if err != nil {
		return err
	}

	publisherManager := events.NewPublisherManager()
	publisherManager.SubscribePublisher(uiTopic, router.Publisher)

	managerOptions := []conversation.ManagerOption{
		conversation.WithEventSinks(publisherManager),
	}
	if s.Chat.Fallback != "" {
		managerOptions = append(managerOptions, conversation.WithFallback(s.Chat.Fallback))
	}
	manager := conversation.NewManager(storeClient, completer, managerOptions...)
	directory := conversation.NewDirectory(storeClient, manager)
	manager.SetSessionCreator(directory)

	p := tea.NewProgram(
		initialModel(manager, directory),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	router.AddHandler("ui", uiTopic, chatForwardFunc(p))
	if verbose {
		router.AddHandler("raw-events", uiTopic, router.LogRawEvents)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	eg := errgroup.Group{}
	eg.Go(func() error {
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		<-router.Running()

		_, runErr := p.Run()
		if closeErr := router.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close event router")
		}
		return runErr
	})

	return eg.Wait()
}

func setupLogging(s *settings.Settings) error {
	level, err := zerolog.ParseLevel(s.Log.Level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", s.Log.Level)
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %s", logFile)
		}
		w = f
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(w).With().Timestamp()
	if s.Log.WithCaller {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()
	return nil
}
