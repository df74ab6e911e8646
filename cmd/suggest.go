package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/urfave/cli/v3"
)

// Suggest asks the recommendation service for songs similar to the library.
func (r *Runner) Suggest(ctx context.Context, cmd *cli.Command) error {
	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	suggestions, err := a.Suggest.Suggest(ctx, a.Library.Songs(), int(cmd.Int("count")))
	if err != nil {
		if errors.Is(err, shared.ErrSuggestionsDisabled) {
			return fmt.Errorf("%w: set suggestions.api_key in config.toml", err)
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(suggestions, true)
	}

	r.writePlainHeader("Suggestions")
	for i, s := range suggestions {
		album := ""
		if s.Album != "" {
			album = fmt.Sprintf(" (%s)", s.Album)
		}
		r.writePlain("%d. %s - %s%s\n", i+1, s.Artist, s.Title, album)
		if s.Reason != "" {
			r.writePlain("   %s\n", s.Reason)
		}
	}
	return nil
}
