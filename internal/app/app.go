// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stellarsound/ringlight/internal/adapter/decoder"
	"github.com/stellarsound/ringlight/internal/adapter/eventbus"
	"github.com/stellarsound/ringlight/internal/adapter/mock"
	"github.com/stellarsound/ringlight/internal/adapter/output"
	"github.com/stellarsound/ringlight/internal/config"
	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/engine"
	"github.com/stellarsound/ringlight/internal/library"
	"github.com/stellarsound/ringlight/internal/logger"
	"github.com/stellarsound/ringlight/internal/ports"
	"github.com/stellarsound/ringlight/internal/scene"
)

// Config holds application configuration.
type Config struct {
	// Runtime is the environment-backed runtime configuration
	Runtime config.Config

	// UseMockAudio substitutes in-memory audio ports (for testing)
	UseMockAudio bool

	// AutoAdvance plays the next track when one completes
	AutoAdvance bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		Runtime:     config.Load(),
		AutoAdvance: true,
		LogLevel:    loggerCfg.Level,
	}
}

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Infrastructure
	eventBus ports.EventBus
	decoder  ports.StemDecoder
	output   ports.Output

	// Core
	engine *engine.Engine
	scene  *scene.Driver
	loader *library.Loader
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg Config) (*Application, error) {
	a := &Application{cfg: cfg}

	a.logger = logger.NewLogger(logger.Config{Level: cfg.LogLevel, Format: "text"})
	a.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()),
		slog.Int("sample_rate", cfg.Runtime.SampleRate),
		slog.Int("fft_size", cfg.Runtime.FFTSize))

	a.eventBus = eventbus.NewSyncBus(a.logger.With(slog.String("component", "eventbus")))

	if cfg.UseMockAudio {
		a.decoder = mock.NewDecoder()
		a.output = mock.NewOutput()
	} else {
		a.decoder = decoder.New(a.logger.With(slog.String("component", "decoder")), cfg.Runtime.SampleRate)
		a.output = output.NewSpeaker(a.logger.With(slog.String("component", "speaker")))
	}

	a.engine = engine.New(
		a.logger.With(slog.String("component", "engine")),
		engine.Config{
			SampleRate:   cfg.Runtime.SampleRate,
			BufferMillis: cfg.Runtime.BufferMillis,
			FFTSize:      cfg.Runtime.FFTSize,
			Smoothing:    cfg.Runtime.Smoothing,
		},
		a.decoder,
		a.output,
		a.eventBus,
	)
	if err := a.engine.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio engine: %w", err)
	}

	if cfg.AutoAdvance {
		a.engine.SetOnEndedHandler(func(track domain.Track) {
			if err := a.engine.PlayNext(); err != nil {
				a.logger.Warn("auto-advance failed",
					slog.String("completed", track.Name),
					slog.Any("error", err))
			}
		})
	}

	sceneCfg := scene.Config{
		InnerSegments: cfg.Runtime.InnerSegments,
		OuterSegments: cfg.Runtime.OuterSegments,
		InnerRadius:   cfg.Runtime.InnerRadius,
		OuterRadius:   cfg.Runtime.OuterRadius,
		FrameRate:     cfg.Runtime.FrameRate,
		Mapper:        scene.DefaultConfig().Mapper,
	}
	a.scene = scene.NewDriver(a.logger.With(slog.String("component", "scene")), sceneCfg, a.engine)

	a.loader = library.NewLoader(a.logger.With(slog.String("component", "library")))

	return a, nil
}

// LoadPlaylist reads the manifest named by the runtime configuration and
// registers it with the engine.
func (a *Application) LoadPlaylist() error {
	tracks, err := a.loader.Load(a.cfg.Runtime.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	a.engine.RegisterPlaylist(tracks)
	return nil
}

// Run starts the scene driver and playback, then blocks until ctx is
// cancelled. The caller owns signal handling.
func (a *Application) Run(ctx context.Context) error {
	a.scene.Start()

	if err := a.LoadPlaylist(); err != nil {
		return err
	}
	if err := a.engine.PlayNext(); err != nil {
		a.logger.Warn("initial playback failed", slog.Any("error", err))
	}

	a.logger.Info("application started")
	<-ctx.Done()
	return nil
}

// Shutdown gracefully shuts down the application: scene first, then the
// engine and its output device, then the event bus.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	a.scene.Stop()

	if err := a.engine.Close(); err != nil {
		a.logger.Warn("failed to close audio engine", slog.Any("error", err))
	}
	if err := a.eventBus.Close(); err != nil {
		a.logger.Warn("failed to close event bus", slog.Any("error", err))
	}
}

// Engine exposes the audio engine for transport control.
func (a *Application) Engine() *engine.Engine {
	return a.engine
}

// Scene exposes the scene driver for rendering integration.
func (a *Application) Scene() *scene.Driver {
	return a.scene
}

// EventBus exposes the event bus for outer surfaces to subscribe on.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}
