package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/talktuah/seatswitch/internal/api"
	"github.com/talktuah/seatswitch/internal/dispatch"
	"github.com/talktuah/seatswitch/internal/events"
	"github.com/talktuah/seatswitch/internal/retell"
	"github.com/talktuah/seatswitch/internal/store"
	"github.com/talktuah/seatswitch/internal/util"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	retellOpts := buildRetellOptions(flags)
	storeOpts := buildStoreOptions(flags)
	dispatchOpts := buildDispatchOptions(flags)
	apiOpts := buildAPIOptions(flags)

	client, err := retell.NewClient(retellOpts...)
	if err != nil {
		slog.Error("Failed to initialize call provider client", "error", err)
		os.Exit(1)
	}

	st := store.New(storeOpts...)
	broadcaster := events.NewBroadcaster()
	dispatcher := dispatch.New(client, st, dispatchOpts...)
	server := api.NewServer(st, dispatcher, broadcaster, apiOpts...)

	slog.Info("Bootstrapping SeatSwitch with configured modules")
	if err := server.Run(); err != nil {
		slog.Error("SeatSwitch failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("SeatSwitch exited successfully")
}

// Config holds environment configuration
type Config struct {
	RetellKey     string
	Addr          string
	InitialSeat   string
	PassengerName string
	CallerName    string
}

// Flags holds command line flag values
type Flags struct {
	retellKey     *string
	addr          *string
	initialSeat   *string
	passengerName *string
	callerName    *string
}

// initializeLogger sets up structured logging; DEBUG=1 enables debug level.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
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
		RetellKey:     os.Getenv("RETELL_API_KEY"),
		Addr:          util.GetenvDefault("API_ADDR", ":"+util.GetenvDefault("PORT", "42069")),
		InitialSeat:   util.GetenvDefault("INITIAL_SEAT", store.InitialSeat),
		PassengerName: util.GetenvDefault("CONSENT_PASSENGER_NAME", ""),
		CallerName:    util.GetenvDefault("INBOUND_CALLER_NAME", ""),
	}

	slog.Debug("environment variables loaded",
		"RETELL_API_KEY_SET", config.RetellKey != "",
		"API_ADDR", config.Addr,
		"INITIAL_SEAT", config.InitialSeat)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		retellKey:     flag.String("retell-api-key", config.RetellKey, "Retell API key (overrides $RETELL_API_KEY)"),
		addr:          flag.String("addr", config.Addr, "API server address (overrides $API_ADDR / $PORT)"),
		initialSeat:   flag.String("initial-seat", config.InitialSeat, "seat the demo passenger starts in (overrides $INITIAL_SEAT)"),
		passengerName: flag.String("passenger-name", config.PassengerName, "name the consent bot addresses (overrides $CONSENT_PASSENGER_NAME)"),
		callerName:    flag.String("caller-name", config.CallerName, "caller name returned by /dynamic-variables (overrides $INBOUND_CALLER_NAME)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"retellKeySet", *flags.retellKey != "",
		"addr", *flags.addr,
		"initialSeat", *flags.initialSeat)

	return flags
}

// buildRetellOptions constructs provider client configuration options
func buildRetellOptions(flags Flags) []retell.Option {
	var opts []retell.Option
	if *flags.retellKey != "" {
		opts = append(opts, retell.WithAPIKey(*flags.retellKey))
	}
	return opts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var opts []store.Option
	if *flags.initialSeat != "" {
		opts = append(opts, store.WithInitialSeat(*flags.initialSeat))
	}
	return opts
}

// buildDispatchOptions constructs dispatcher configuration options
func buildDispatchOptions(flags Flags) []dispatch.Option {
	var opts []dispatch.Option
	if *flags.passengerName != "" {
		opts = append(opts, dispatch.WithPassengerName(*flags.passengerName))
	}
	return opts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var opts []api.Option
	if *flags.addr != "" {
		opts = append(opts, api.WithAddr(*flags.addr))
	}
	if *flags.callerName != "" {
		opts = append(opts, api.WithCallerName(*flags.callerName))
	}
	return opts
}
