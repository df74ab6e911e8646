package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zerofake/musicflow1/internal/formatter"
	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	playlists := a.Playlists.Playlists()

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, playlist := range playlists {
		r.writePlain("%s  %s (%d songs)\n", playlist.ID, playlist.Name, len(playlist.SongIDs))
	}
	return nil
}

// PlaylistsCreate creates a playlist, enforcing the playlist quota.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}
	name := args[0]

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ok, err := a.Playlists.Create(name, cmd.String("description"))
	if err != nil {
		return err
	}
	if !ok {
		if can, message := a.Playlists.CanCreate(); !can {
			return fmt.Errorf("%w: %s", shared.ErrQuotaExceeded, message)
		}
		return fmt.Errorf("%w: name must be 1 to %d characters", shared.ErrInvalidName, r.config.Limits.MaxNameLength)
	}

	r.writePlain("✓ Created playlist %q\n", name)
	return nil
}

// PlaylistsShow prints a playlist with its resolved songs.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	playlist, ok := a.Playlists.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, args[0])
	}
	songs := a.Playlists.SongsFor(playlist)

	if cmd.Bool("json") {
		export := formatter.PlaylistExport{Playlist: playlist, Songs: songs}
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	r.writePlainHeader(playlist.Name)
	if playlist.Description != "" {
		r.writePlain("%s\n\n", playlist.Description)
	}
	for i, song := range songs {
		r.writePlain("%d. %s - %s [%s]\n", i+1, song.Artist, song.Title, shared.FormatDuration(song.Duration))
	}
	return nil
}

// PlaylistsRename renames a playlist.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 2 {
		return fmt.Errorf("%w: playlist id and new name are required", shared.ErrMissingArgument)
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	name := args[1]
	if err := a.Playlists.Update(args[0], repositories.PlaylistPatch{Name: &name}); err != nil {
		return err
	}

	r.writePlain("✓ Renamed playlist to %q\n", name)
	return nil
}

// PlaylistsDelete removes a playlist record.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Playlists.Delete(args[0]); err != nil {
		return err
	}

	r.writePlain("✓ Deleted playlist %s\n", args[0])
	return nil
}

// PlaylistsAdd appends library songs to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: playlist id and at least one song id are required", shared.ErrMissingArgument)
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	songs := make([]models.Song, 0, len(args)-1)
	for _, id := range args[1:] {
		song, ok := a.Library.SongByID(id)
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
		}
		songs = append(songs, song)
	}

	if err := a.Playlists.AddSongs(args[0], songs); err != nil {
		return err
	}

	r.writePlain("✓ Added %d song(s) to playlist %s\n", len(songs), args[0])
	return nil
}

// PlaylistsRemove drops a song from a playlist, leaving it in the library.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 2 {
		return fmt.Errorf("%w: playlist id and song id are required", shared.ErrMissingArgument)
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Playlists.RemoveSong(args[0], args[1]); err != nil {
		return err
	}

	r.writePlain("✓ Removed song %s from playlist %s\n", args[1], args[0])
	return nil
}

// PlaylistsMove moves a song between playlists.
func (r *Runner) PlaylistsMove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 3 {
		return fmt.Errorf("%w: source id, target id and song id are required", shared.ErrMissingArgument)
	}
	sourceID, targetID, songID := args[0], args[1], args[2]

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	song, ok := a.Library.SongByID(songID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, songID)
	}

	if err := a.Playlists.MoveSong(targetID, song, sourceID); err != nil {
		return err
	}

	r.writePlain("✓ Moved %s from %s to %s\n", songID, sourceID, targetID)
	return nil
}

// PlaylistsExport writes a playlist to disk in the requested format.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	playlist, ok := a.Playlists.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, args[0])
	}

	export := &formatter.PlaylistExport{
		Playlist: playlist,
		Songs:    a.Playlists.SongsFor(playlist),
	}

	output := cmd.String("output")
	switch strings.ToLower(cmd.String("format")) {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s and %s\n", result.SongsFile, result.MetadataFile)
	case "markdown", "md":
		file, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", file)
	case "text", "txt":
		file, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", file)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, cmd.String("format"))
	}
	return nil
}
