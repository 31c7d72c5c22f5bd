package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/gravitrone/scribble/internal/ai"
	"github.com/gravitrone/scribble/internal/ai/gemini"
	"github.com/gravitrone/scribble/internal/ai/openai"
	"github.com/gravitrone/scribble/internal/config"
	"github.com/gravitrone/scribble/internal/controller"
	"github.com/gravitrone/scribble/internal/note"
	"github.com/gravitrone/scribble/internal/slot"
)

// Session is everything a front end needs to work on the notes.
type Session struct {
	Config     *config.Config
	Store      *note.Store
	Controller *controller.Controller
	Logger     *slog.Logger

	closers []func() error
}

// NewLogger builds the text logger used across the app.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenSession wires config into slot, store, model, gateway and controller.
func OpenSession(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sl, closeSlot, err := OpenSlot(cfg)
	if err != nil {
		return nil, err
	}

	store := note.Open(sl, note.WithLogger(logger))
	if store.Seeded() {
		logger.Info("starting with seed note", "slot", sl.Name())
	}

	model, modelName := NewModel(cfg)
	gw := ai.NewGateway(model, modelName, logger)

	s := &Session{
		Config:     cfg,
		Store:      store,
		Controller: controller.New(store, gw, logger),
		Logger:     logger,
	}
	if closeSlot != nil {
		s.closers = append(s.closers, closeSlot)
	}
	return s, nil
}

// Close releases the storage backend.
func (s *Session) Close() error {
	var errs []error
	for _, fn := range s.closers {
		errs = append(errs, fn())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// OpenSlot returns the configured persistence backend and its closer, if
// any.
func OpenSlot(cfg *config.Config) (slot.Slot, func() error, error) {
	dir := cfg.StorageDir()
	switch cfg.Storage.Driver {
	case "", config.DriverFile:
		return slot.NewFile(dir, slot.DefaultName), nil, nil
	case config.DriverSQLite:
		db, err := slot.OpenSQLite(filepath.Join(dir, "scribble.db"), slot.DefaultName)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewModel returns the configured model client and the model name to
// request.
func NewModel(cfg *config.Config) (ai.Model, string) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		name := cfg.Model
		if name == "" {
			name = openai.DefaultModel
		}
		return openai.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout()), name
	default:
		name := cfg.Model
		if name == "" {
			name = gemini.DefaultModel
		}
		return gemini.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout()), name
	}
}
