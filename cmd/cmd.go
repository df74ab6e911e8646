// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database, run migrations and seed starter content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// importCommand ingests audio files into the catalog
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import audio files into the library",
		ArgsUsage: "<file> [file...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress per-file progress output",
			},
		},
		Action: r.Import,
	}
}

// songsCommand handles catalog operations
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Library catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all songs in the library",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a song from the library and every playlist",
				ArgsUsage: "<song-id>",
				Action:    r.SongsDelete,
			},
		},
	}
}

// playlistsCommand handles playlist operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:      "create",
				Usage:     "Create a new playlist",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its songs",
				ArgsUsage: "<playlist-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				ArgsUsage: "<playlist-id> <new-name>",
				Action:    r.PlaylistsRename,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist, keeping its songs in the library",
				ArgsUsage: "<playlist-id>",
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "add",
				Usage:     "Add songs from the library to a playlist",
				ArgsUsage: "<playlist-id> <song-id> [song-id...]",
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a song from a playlist",
				ArgsUsage: "<playlist-id> <song-id>",
				Action:    r.PlaylistsRemove,
			},
			{
				Name:      "move",
				Usage:     "Move a song from one playlist to another",
				ArgsUsage: "<source-id> <target-id> <song-id>",
				Action:    r.PlaylistsMove,
			},
			{
				Name:      "export",
				Usage:     "Export a playlist to CSV, Markdown or plain text",
				ArgsUsage: "<playlist-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown or text",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory path",
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// playCommand plays a song from the terminal
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a song, blocking until it finishes",
		ArgsUsage: "[song-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Queue the given playlist instead of the whole library",
			},
			&cli.BoolFlag{
				Name:  "repeat",
				Usage: "Repeat the song until interrupted",
			},
		},
		Action: r.Play,
	}
}

// storeCommand handles the coin balance and ad-free time
func storeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Coin balance and ad-free time",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show coin balance and ad-free window",
				Action: r.StoreStatus,
			},
			{
				Name:      "add",
				Usage:     "Credit coins to the balance",
				ArgsUsage: "<amount>",
				Action:    r.StoreAdd,
			},
			{
				Name:      "spend",
				Usage:     "Spend coins on ad-free listening time",
				ArgsUsage: "<amount>",
				Action:    r.StoreSpend,
			},
		},
	}
}

// suggestCommand requests song recommendations
func suggestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Recommend songs based on the library",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of suggestions to request",
				Value:   5,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Suggest,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive player",
		Action: r.TUI,
	}
}
