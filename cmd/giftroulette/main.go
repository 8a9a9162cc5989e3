package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mroldan/giftroulette/internal/genai"
	"github.com/mroldan/giftroulette/internal/messaging"
	"github.com/mroldan/giftroulette/internal/models"
	"github.com/mroldan/giftroulette/internal/notify"
	"github.com/mroldan/giftroulette/internal/roulette"
	"github.com/mroldan/giftroulette/internal/store"
	"github.com/mroldan/giftroulette/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for GiftRoulette state data
	DefaultStateDir = "/var/lib/giftroulette"
	// DefaultDBFileName is the default SQLite delivery log filename
	DefaultDBFileName = "giftroulette.db"
	// DefaultChannel is the default notification channel
	DefaultChannel = "smtp"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	if err := run(flags); err != nil {
		slog.Error("GiftRoulette failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("GiftRoulette exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir    string
	DbDriver    string
	DeliveryDSN string
	Channel     string
	Notify      bool
	GenAI       bool
}

// Flags holds command line flag values
type Flags struct {
	participants *string
	out          *string
	stateDir     *string
	dbDriver     *string
	dbDSN        *string
	channel      *string
	notify       *bool
	genAI        *bool
	seed         *int64
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:    os.Getenv("GIFTROULETTE_STATE_DIR"),
		DbDriver:    os.Getenv("DELIVERY_DB_DRIVER"),
		DeliveryDSN: os.Getenv("DELIVERY_DB_DSN"),
		Channel:     os.Getenv("NOTIFY_CHANNEL"),
		Notify:      util.ParseBoolEnv("NOTIFY", false),
		GenAI:       util.ParseBoolEnv("GENAI_BODY", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No GIFTROULETTE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DeliveryDSN == "" {
		config.DeliveryDSN = os.Getenv("DATABASE_URL")
		if config.DeliveryDSN != "" {
			slog.Debug("Using DATABASE_URL as DELIVERY_DB_DSN")
		}
	}
	if config.DeliveryDSN == "" {
		config.DeliveryDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No delivery DSN provided, defaulting to SQLite", "sqlite_path", config.DeliveryDSN)
	}
	if config.Channel == "" {
		config.Channel = DefaultChannel
	}

	slog.Debug("environment variables loaded",
		"GIFTROULETTE_STATE_DIR", config.StateDir,
		"DELIVERY_DB_DRIVER", config.DbDriver,
		"DELIVERY_DB_DSN_SET", config.DeliveryDSN != "",
		"NOTIFY_CHANNEL", config.Channel,
		"NOTIFY", config.Notify,
		"GENAI_BODY", config.GenAI)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		participants: flag.String("participants", "", "path to JSON file with the participant list"),
		out:          flag.String("out", "", "path to the assignment output file (must end in .json)"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for GiftRoulette data (overrides $GIFTROULETTE_STATE_DIR)"),
		dbDriver:     flag.String("db-driver", config.DbDriver, "delivery log driver: sqlite3 or postgres (overrides $DELIVERY_DB_DRIVER)"),
		dbDSN:        flag.String("db-dsn", config.DeliveryDSN, "delivery log DSN (overrides $DELIVERY_DB_DSN or $DATABASE_URL)"),
		channel:      flag.String("channel", config.Channel, "notification channel: smtp or twilio (overrides $NOTIFY_CHANNEL)"),
		notify:       flag.Bool("notify", config.Notify, "send notifications after persisting the assignment (overrides $NOTIFY)"),
		genAI:        flag.Bool("genai", config.GenAI, "generate message bodies with OpenAI (overrides $GENAI_BODY)"),
		seed:         flag.Int64("seed", 0, "deterministic shuffle seed (0 uses a random source)"),
	}
	flag.Parse()
	return flags
}

// loadParticipants reads and validates the participant list file.
func loadParticipants(path string) (*models.Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("participant file path is required (-participants)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read participant file %s: %w", path, err)
	}
	var participants []models.Participant
	if err := json.Unmarshal(data, &participants); err != nil {
		return nil, fmt.Errorf("decode participant file %s: %w", path, err)
	}
	registry, err := models.NewRegistry(participants)
	if err != nil {
		return nil, fmt.Errorf("build participant registry: %w", err)
	}
	slog.Info("Participant registry loaded", "count", registry.Len())
	return registry, nil
}

// buildEngineOptions assembles rotation engine options from flags.
func buildEngineOptions(flags Flags) []roulette.Option {
	var opts []roulette.Option
	if *flags.seed != 0 {
		rng := rand.New(rand.NewPCG(uint64(*flags.seed), 0))
		opts = append(opts, roulette.WithShuffleFunc(rng.Shuffle))
		slog.Debug("Using seeded shuffle", "seed", *flags.seed)
	}
	return opts
}

// buildDeliveryRepo opens the delivery log for the configured driver.
func buildDeliveryRepo(flags Flags) (store.DeliveryRepo, error) {
	if *flags.dbDriver == "postgres" {
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// buildMessagingService creates the configured delivery channel.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.channel {
	case "smtp":
		return messaging.NewSMTPService()
	case "twilio":
		return messaging.NewTwilioService()
	default:
		return nil, fmt.Errorf("unknown notification channel %q", *flags.channel)
	}
}

// run sequences the exchange: load, shuffle, persist, notify.
func run(flags Flags) error {
	registry, err := loadParticipants(*flags.participants)
	if err != nil {
		return err
	}

	assignmentStore, err := store.NewJSONFileStore(*flags.out)
	if err != nil {
		return fmt.Errorf("configure assignment store: %w", err)
	}

	engine, err := roulette.New(registry, assignmentStore, buildEngineOptions(flags)...)
	if err != nil {
		return fmt.Errorf("configure rotation engine: %w", err)
	}

	if err := engine.Run(); err != nil {
		return err
	}
	slog.Info("Assignment persisted", "path", assignmentStore.Path(), "pairs", registry.Len())

	if !*flags.notify {
		return nil
	}

	service, err := buildMessagingService(flags)
	if err != nil {
		return fmt.Errorf("configure messaging service: %w", err)
	}

	deliveries, err := buildDeliveryRepo(flags)
	if err != nil {
		return fmt.Errorf("configure delivery log: %w", err)
	}
	defer deliveries.Close()

	notifyOpts := []notify.Option{notify.WithDeliveryRepo(deliveries)}
	if *flags.genAI {
		composer, err := genai.NewClient()
		if err != nil {
			slog.Warn("GenAI composer unavailable, using static template", "error", err)
		} else {
			notifyOpts = append(notifyOpts, notify.WithComposer(composer))
		}
	}

	notifier := notify.New(registry, service, notifyOpts...)
	runID := util.GenerateRunID()
	if err := notifier.SendAll(context.Background(), runID, engine.Pairs()); err != nil {
		return fmt.Errorf("notification phase failed (run %s): %w", runID, err)
	}
	return nil
}
