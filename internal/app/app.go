// Package app wires the storage, service and playback layers into a single
// container shared by the CLI commands and the TUI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Zerofake/musicflow1/internal/importer"
	"github.com/Zerofake/musicflow1/internal/ledger"
	"github.com/Zerofake/musicflow1/internal/library"
	"github.com/Zerofake/musicflow1/internal/playback"
	"github.com/Zerofake/musicflow1/internal/playlists"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/Zerofake/musicflow1/internal/suggest"
)

// App owns the database handle and every service built on top of it.
type App struct {
	Config   *shared.Config
	DB       *sql.DB
	Notifier *repositories.Notifier

	Library   *library.Service
	Playlists *playlists.Service
	Ledger    *ledger.Service
	Transport *playback.Transport
	Importer  *importer.Importer
	Suggest   *suggest.Service

	device playback.Device
	logger *log.Logger
}

// Option adjusts app construction.
type Option func(*options)

type options struct {
	device playback.Device
	seed   bool
}

// WithDevice substitutes the audio device, mainly for tests and headless
// commands that never produce sound.
func WithDevice(device playback.Device) Option {
	return func(o *options) { o.device = device }
}

// WithoutSeed skips the starter content for an empty database.
func WithoutSeed() Option {
	return func(o *options) { o.seed = false }
}

// New opens the database, runs migrations, seeds starter content on first
// run and builds the service graph.
func New(ctx context.Context, config *shared.Config, logger *log.Logger, opts ...Option) (*App, error) {
	o := &options{seed: true}
	for _, opt := range opts {
		opt(o)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	notifier := repositories.NewNotifier()
	if o.seed {
		if err := repositories.Seed(db, notifier, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	songRepo := repositories.NewSongRepository(db, notifier)
	playlistRepo := repositories.NewPlaylistRepository(db, notifier)
	ledgerRepo := repositories.NewLedgerRepository(db, notifier)

	app := &App{Config: config, DB: db, Notifier: notifier, logger: logger}

	app.Library, err = library.NewService(songRepo, playlistRepo, notifier, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	app.Playlists, err = playlists.NewService(playlistRepo, app.Library, notifier, config.Limits, logger)
	if err != nil {
		app.Library.Close()
		db.Close()
		return nil, err
	}

	app.Ledger, err = ledger.NewService(ledgerRepo, notifier, config.Credits, logger)
	if err != nil {
		app.Playlists.Close()
		app.Library.Close()
		db.Close()
		return nil, err
	}

	app.device = o.device
	if app.device == nil {
		app.device = playback.NewBeepDevice()
	}
	app.Transport = playback.NewTransport(app.device, app.Library, logger)

	app.Importer = importer.New(app.Library, config.Import.ChunkSize, logger)

	app.Suggest, err = suggest.NewService(ctx, config.Suggestions, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close tears the container down in reverse dependency order.
func (a *App) Close() error {
	if a.Suggest != nil {
		a.Suggest.Close()
	}
	if a.Transport != nil {
		a.Transport.Close()
	}
	if a.device != nil {
		a.device.Close()
	}
	if a.Ledger != nil {
		a.Ledger.Close()
	}
	if a.Playlists != nil {
		a.Playlists.Close()
	}
	if a.Library != nil {
		a.Library.Close()
	}
	return a.DB.Close()
}
