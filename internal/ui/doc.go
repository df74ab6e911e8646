// Package ui implements the interactive player using bubbletea's Elm architecture.
//
// The TUI exposes three views:
//  1. [LibraryView] : Browse the song catalog and start playback
//  2. [PlaylistListView] : Browse playlists
//  3. [PlaylistSongsView] : Browse a playlist's songs and play from it
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Transport state is polled on a one second tick and storage changes arrive
// through the repository notifier, so external edits show up while the UI is
// open.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, n, p,
// r, tab, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
