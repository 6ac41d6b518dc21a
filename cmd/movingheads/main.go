package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/open-teleop/movingheads/domain/diagnostic"
	"github.com/open-teleop/movingheads/domain/inspection"
	"github.com/open-teleop/movingheads/domain/targeting"
	"github.com/open-teleop/movingheads/domain/teleop"
	"github.com/open-teleop/movingheads/pkg/api"
	"github.com/open-teleop/movingheads/pkg/config"
	"github.com/open-teleop/movingheads/pkg/console"
	"github.com/open-teleop/movingheads/pkg/input"
	customlog "github.com/open-teleop/movingheads/pkg/log"
	"github.com/open-teleop/movingheads/pkg/midi"
	"github.com/open-teleop/movingheads/pkg/processing"
	"github.com/open-teleop/movingheads/pkg/zeromq"
	"github.com/open-teleop/movingheads/services"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configDir := flag.String("config-dir", "./configs", "directory containing controller_config.yaml")
	useConsole := flag.Bool("console", false, "show the terminal console and steer with the arrow keys")
	flag.Parse()

	if err := run(*configDir, *useConsole); err != nil {
		fmt.Fprintf(os.Stderr, "movingheads: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string, useConsole bool) error {
	defer gomidi.CloseDriver()

	bootstrap, err := config.LoadBootstrapConfig(configDir)
	if err != nil {
		return err
	}

	logger, err := newLogger(bootstrap.Logging, useConsole)
	if err != nil {
		return err
	}
	logger.Infof("Loaded bootstrap config from %s", configDir)

	showConfig, err := services.NewShowConfigService(bootstrap.ShowConfigPath(), logger)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			logger.Errorf("Invalid show configuration: %v", err)
		}
		return err
	}
	show := showConfig.GetCurrentConfig()

	target, err := targeting.TargetFromConfig(show)
	if err != nil {
		return err
	}
	world := &targeting.World{
		Target:   target,
		Fixtures: targeting.FixturesFromConfig(show),
	}
	logger.Infof("Rig: %d moving heads, target home %v", len(world.Fixtures), target.Position())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// Inputs
	remote := input.NewLatest(bootstrap.SampleTimeout())
	mixer := input.NewMixer(bootstrap.Input.Scale, remote)
	if bootstrap.Input.Gamepad.Enabled {
		gamepad := input.NewGamepad(bootstrap.Input.Gamepad, logger.WithField("component", "gamepad"))
		mixer.Add(gamepad)
		wg.Add(1)
		go func() {
			defer wg.Done()
			gamepad.Run(ctx)
		}()
	}
	var keyboard *input.Latest
	if useConsole {
		keyboard = input.NewLatest(bootstrap.SampleTimeout())
		mixer.Add(keyboard)
	}

	// Outputs and observers
	store := inspection.NewStore()
	diagnostics := diagnostic.NewDiagnosticService(logger)
	observers := []targeting.Observer{store, diagnostics}
	var sinks targeting.MultiSink

	var zmqService *zeromq.ZeroMQService
	if bootstrap.ZeroMQ.Enabled {
		zmqService, err = zeromq.NewZeroMQService(bootstrap.ZeroMQ, remote, logger)
		if err != nil {
			return fmt.Errorf("failed to create ZeroMQ service: %w", err)
		}
		defer zmqService.Stop()

		zeromq.RegisterSnapshotHandler(zmqService, store, logger)
		if err := zmqService.Start(); err != nil {
			return fmt.Errorf("failed to start ZeroMQ service: %w", err)
		}

		frames := zeromq.NewFramePublisher(zmqService)
		sinks = append(sinks, frames)
		observers = append(observers, frames)
		logger.Infof("Publishing frames on %s (session %s)", zmqService.PublishEndpoint(), frames.SessionID())
	}

	if bootstrap.MIDI.Enabled {
		midiSink, err := midi.NewSink(bootstrap.MIDI)
		if err != nil {
			logger.Errorf("Available MIDI output ports: %v", midi.OutPortNames())
			return fmt.Errorf("failed to open MIDI output: %w", err)
		}
		defer midiSink.Close()
		sinks = append(sinks, midiSink)
		logger.Infof("Sending MIDI CC on %s", midiSink.PortName())
	}

	var executor targeting.Executor
	if bootstrap.Engine.Workers > 0 {
		pool := processing.NewWorkerPool("solver", bootstrap.Engine.Workers, logger)
		pool.Start()
		defer pool.Stop()
		executor = pool
	}

	var sink targeting.OutputSink
	if len(sinks) > 0 {
		sink = sinks
	} else {
		logger.Warnf("No output enabled, frames are only visible through inspection")
	}

	driver, err := targeting.NewDriver(world, logger, targeting.DriverOptions{
		Sink:      sink,
		Executor:  executor,
		Source:    mixer,
		Interval:  bootstrap.TickInterval(),
		Observers: observers,
	})
	if err != nil {
		return err
	}

	// Inspection server
	if bootstrap.Server.HTTPPort > 0 {
		app := api.NewApp(api.Dependencies{
			Logger:      logger,
			Store:       store,
			Diagnostics: diagnostics,
			Teleop:      teleop.NewTeleopService(remote),
			ShowConfig:  showConfig,
			Samples:     remote,
			AccessLog:   !useConsole && bootstrap.Logging.Level == "debug",
		})
		addr := fmt.Sprintf(":%d", bootstrap.Server.HTTPPort)
		go func() {
			logger.Infof("Server starting on %s", addr)
			if err := app.Listen(addr); err != nil {
				logger.Errorf("Failed to start server: %v", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				logger.Errorf("Server forced to shutdown: %v", err)
			}
		}()
	}

	if useConsole {
		screen, err := console.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			console.New(screen, store, keyboard).Run(ctx)
			// quitting the console stops the controller
			stop()
		}()
	}

	logger.Infof("Targeting loop running at %d Hz", bootstrap.Engine.TickRateHz)
	err = driver.Run(ctx)
	stop()
	wg.Wait()
	logger.Infof("Controller exited properly")
	return err
}

// newLogger builds the process logger. The console owns the terminal, so in
// console mode logs only go to the log file.
func newLogger(cfg config.LoggingConfig, useConsole bool) (customlog.Logger, error) {
	if !useConsole {
		return customlog.NewLogrusLogger(cfg.Level, cfg.LogPath)
	}
	if cfg.LogPath == "" {
		return customlog.NewLogrusLoggerWithOutput(cfg.Level, io.Discard), nil
	}
	if err := os.MkdirAll(cfg.LogPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory '%s': %w", cfg.LogPath, err)
	}
	path := filepath.Join(cfg.LogPath, customlog.LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return customlog.NewLogrusLoggerWithOutput(cfg.Level, f), nil
}
