package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play starts playback from the terminal and blocks until the queue goes
// idle or the context is canceled.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	queue := a.Library.Songs()
	if playlistID := cmd.String("playlist"); playlistID != "" {
		playlist, ok := a.Playlists.Get(playlistID)
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		queue = a.Playlists.SongsFor(playlist)
	}
	if len(queue) == 0 {
		return fmt.Errorf("%w: nothing to play", shared.ErrSongNotFound)
	}

	song := queue[0]
	if args := cmd.Args().Slice(); len(args) > 0 {
		found, ok := a.Library.SongByID(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrSongNotFound, args[0])
		}
		song = found
	}

	if cmd.Bool("repeat") && !a.Transport.Snapshot().Repeat {
		a.Transport.ToggleRepeat()
	}

	if err := a.Transport.PlaySong(song, queue); err != nil {
		return err
	}

	state := a.Transport.Snapshot()
	r.writePlain("▶ %s - %s\n", state.Current.Artist, state.Current.Title)

	// Poll until the transport goes idle. With repeat on this runs until
	// interrupted.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := state.Index
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			state := a.Transport.Snapshot()
			if state.Index == -1 {
				return nil
			}
			if state.Index != last {
				last = state.Index
				r.writePlain("▶ %s - %s\n", state.Current.Artist, state.Current.Title)
			}
		}
	}
}
