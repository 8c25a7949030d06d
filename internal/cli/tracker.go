package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/store"
)

// openTracker opens the store at the configured path and builds a
// tracker with its logical clock resumed past the highest persisted seq.
// The caller must Close the returned store.
func openTracker(ctx context.Context, opts *RootOptions) (*engine.Tracker, *store.Store, error) {
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "cannot open database", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	tracker := engine.New(st, engine.WithLogger(logger))
	if err := tracker.ResumeClock(ctx); err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "cannot resume clock", err)
	}
	return tracker, st, nil
}
