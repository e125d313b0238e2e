// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "stimjim-service/docs"
	"stimjim-service/internal/config"
	"stimjim-service/internal/database"
	"stimjim-service/internal/handler"
	"stimjim-service/internal/protocol"
	"stimjim-service/internal/repository"
	"stimjim-service/internal/routes"
	"stimjim-service/internal/service"
	"stimjim-service/internal/utils"
)

// Options holds the command line overrides
type Options struct {
	ConfigPath string
	Port       string
	SerialLog  string
	Verbosity  verbosityFlag
}

// verbosityFlag counts repeated -v flags
type verbosityFlag int

func (v *verbosityFlag) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosityFlag) Set(string) error {
	*v++
	return nil
}

func (v *verbosityFlag) IsBoolFlag() bool { return true }

// Application represents the main application
type Application struct {
	options  *Options
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	// Services
	stimulator       *service.StimulatorService
	programService   *service.ProgramService
	discoveryService *service.DiscoveryService

	// Events
	eventBus  *handler.EventBus
	wsHandler *handler.WebSocketHandler
	serialLog io.WriteCloser

	// Repositories
	programRepo repository.ProgramRepository

	ctx    context.Context
	cancel context.CancelFunc
}

// @title StimJim Service API
// @version 1.0.0
// @description Controller for the StimJim two-channel stimulator: pulse train programs, triggers, raw commands and a stored program library

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8084
// @BasePath /api/v1
func main() {
	opts := parseOptions(os.Args[1:])

	app, err := NewApplication(opts)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

func parseOptions(args []string) *Options {
	opts := &Options{}
	fs := flag.NewFlagSet("stimjim-service", flag.ExitOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "path to the configuration file")
	fs.StringVar(&opts.Port, "port", "", "serial port of the stimulator, skips discovery")
	fs.StringVar(&opts.SerialLog, "log", "", "file receiving the stimulator's output")
	fs.Var(&opts.Verbosity, "v", "increase log verbosity, repeat for debug")
	_ = fs.Parse(args)
	return opts
}

// NewApplication creates a new application instance
func NewApplication(opts *Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOptions(cfg, opts)

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "stimjim-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		options: opts,
		config:  cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := app.initializeDatabase(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeEvents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize events: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// applyOptions lets command line flags override the configuration
func applyOptions(cfg *config.Config, opts *Options) {
	if opts.Port != "" {
		cfg.Device.Transport = string(protocol.TransportSerial)
		cfg.Device.Port = opts.Port
	}
	if opts.SerialLog != "" {
		cfg.Device.SerialLogPath = opts.SerialLog
	}
	cfg.Logging.Level = utils.VerbosityLevel(cfg.Logging.Level, int(opts.Verbosity))
}

// initializeDatabase connects the program library and runs migrations.
// The library is optional.
func (app *Application) initializeDatabase() error {
	if !app.config.Database.Enabled {
		app.logger.Info("Program library disabled")
		return nil
	}

	db, err := database.NewConnection(&app.config.Database, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	migrator := database.NewMigrator(db, app.logger, &app.config.Database)
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.programRepo = repository.NewProgramRepository(db, app.logger)

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	app.stimulator = service.NewStimulatorService(&app.config.Device, app.logger)

	if path := app.config.Device.SerialLogPath; path != "" {
		writer, err := utils.NewSerialLogWriter(path)
		if err != nil {
			return fmt.Errorf("failed to open serial log: %w", err)
		}
		app.serialLog = writer
		app.stimulator.SetSerialLog(writer)
	}

	app.programService = service.NewProgramService(app.programRepo, app.stimulator, app.logger)
	app.discoveryService = service.NewDiscoveryService(&app.config.Device, app.logger)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeEvents wires stimulator events to websocket clients
func (app *Application) initializeEvents() error {
	app.eventBus = handler.NewEventBus(app.logger)
	app.stimulator.AddListener(handler.NewDeviceEventHandler(app.eventBus, app.logger))
	app.wsHandler = handler.NewWebSocketHandler(
		app.stimulator,
		app.eventBus,
		app.config.Security.AllowedOrigins,
		app.logger,
	)
	return nil
}

// initializeServer sets up HTTP server
func (app *Application) initializeServer() error {
	router := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.stimulator,
		app.programService,
		app.discoveryService,
		app.wsHandler,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.server.Addr),
	)
	return nil
}

// startBackgroundServices starts event delivery, the serial poll loop and
// the initial connection attempt
func (app *Application) startBackgroundServices() {
	go app.eventBus.Start()
	app.wsHandler.Start(app.ctx)
	go app.stimulator.Run(app.ctx)

	if app.config.Device.AutoConnect || app.options.Port != "" {
		go app.autoConnect()
	}
}

// autoConnect opens the configured or discovered stimulator. Failure leaves
// the service running without a link.
func (app *Application) autoConnect() {
	ctx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	port, err := app.discoveryService.AutoConnect(ctx, app.stimulator)
	if err != nil {
		app.logger.Warn("Automatic connection failed", zap.Error(err))
		return
	}
	app.logger.Info("Stimulator connected",
		zap.String("transport", string(port.Transport)),
		zap.String("port", port.Port),
	)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "stimjim-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	app.cancel()
	app.wsHandler.Stop()

	if err := app.stimulator.Close(); err != nil && !errors.Is(err, protocol.ErrNotOpen) {
		app.logger.Error("Stimulator close error", zap.Error(err))
	}
	app.eventBus.Close()

	if app.serialLog != nil {
		if err := app.serialLog.Close(); err != nil {
			app.logger.Error("Serial log close error", zap.Error(err))
		}
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start runs the HTTP server and background services until a shutdown
// signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()

	app.waitForShutdown()

	return nil
}
