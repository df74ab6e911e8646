package main

import (
	"context"
	"fmt"

	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsList prints every song in the library.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	songs := a.Library.Songs()

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d songs)", len(songs)))
	for _, song := range songs {
		album := ""
		if song.Album != "" {
			album = fmt.Sprintf(" (%s)", song.Album)
		}
		r.writePlain("%s  %s - %s%s [%s]\n", song.ID, song.Artist, song.Title, album, shared.FormatDuration(song.Duration))
	}
	return nil
}

// SongsDelete removes a song from the library and every playlist referencing it.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}
	songID := args[0]

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Library.DeleteSong(songID); err != nil {
		return err
	}

	r.writePlain("✓ Deleted song %s\n", songID)
	return nil
}
