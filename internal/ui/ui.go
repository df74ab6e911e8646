package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zerofake/musicflow1/internal/app"
	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/playback"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	PlaylistListView
	PlaylistSongsView
)

// tickMsg drives the transport status bar refresh.
type tickMsg time.Time

// storeChangedMsg reports a storage write observed through the notifier.
type storeChangedMsg repositories.Event

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	app    *app.App
	view   ViewState
	width  int
	height int

	songList         list.Model
	playlistList     list.Model
	playlistSongList list.Model
	selectedPlaylist *models.Playlist

	state  playback.State
	events <-chan repositories.Event
	cancel func()

	help help.Model
	keys keyMap
	err  error
}

// NewModel creates a new TUI model over the app container.
func NewModel(ctx context.Context, a *app.App) *Model {
	events, cancel := a.Notifier.Subscribe()

	m := &Model{
		ctx:    ctx,
		app:    a,
		view:   LibraryView,
		events: events,
		cancel: cancel,
		help:   help.New(),
		keys:   newKeyMap(),
	}

	m.songList = list.New(songItems(a.Library.Songs()), list.NewDefaultDelegate(), 0, 0)
	m.songList.Title = "Library"
	m.playlistList = list.New(playlistItems(a.Playlists.Playlists()), list.NewDefaultDelegate(), 0, 0)
	m.playlistList.Title = "Playlists"

	return m
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	return items
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, playlist := range playlists {
		items[i] = playlistItem{playlist: playlist}
	}
	return items
}

// Init starts the status tick and the storage watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForStore())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.playlistSongList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tickMsg:
		m.state = m.app.Transport.Snapshot()
		return m, m.tick()

	case storeChangedMsg:
		switch repositories.Event(msg).Table {
		case repositories.TableSongs:
			m.songList.SetItems(songItems(m.app.Library.Songs()))
			m.refreshPlaylistSongs()
		case repositories.TablePlaylists:
			m.playlistList.SetItems(playlistItems(m.app.Playlists.Playlists()))
			m.refreshPlaylistSongs()
		}
		return m, m.waitForStore()

	case tea.KeyMsg:
		if cmd, handled := m.handleTransportKeys(msg); handled {
			return m, cmd
		}
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case PlaylistSongsView:
			return m.handlePlaylistSongsKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// handleTransportKeys handles bindings that work in every view.
func (m *Model) handleTransportKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return tea.Quit, true
	case key.Matches(msg, m.keys.toggle):
		m.err = m.app.Transport.TogglePlay()
		m.state = m.app.Transport.Snapshot()
		return nil, true
	case key.Matches(msg, m.keys.next):
		m.err = m.app.Transport.PlayNext()
		m.state = m.app.Transport.Snapshot()
		return nil, true
	case key.Matches(msg, m.keys.prev):
		m.err = m.app.Transport.PlayPrev()
		m.state = m.app.Transport.Snapshot()
		return nil, true
	case key.Matches(msg, m.keys.repeat):
		m.app.Transport.ToggleRepeat()
		m.state = m.app.Transport.Snapshot()
		return nil, true
	case key.Matches(msg, m.keys.seekFwd):
		m.err = m.app.Transport.Seek(m.state.Position + 5*time.Second)
		m.state = m.app.Transport.Snapshot()
		return nil, true
	case key.Matches(msg, m.keys.seekBck):
		m.err = m.app.Transport.Seek(m.state.Position - 5*time.Second)
		m.state = m.app.Transport.Snapshot()
		return nil, true
	case key.Matches(msg, m.keys.tab):
		if m.view == LibraryView {
			m.view = PlaylistListView
		} else {
			m.view = LibraryView
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.err = m.app.Transport.PlaySong(item.song, m.app.Library.Songs())
			m.state = m.app.Transport.Snapshot()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			playlist := item.playlist
			m.selectedPlaylist = &playlist
			m.playlistSongList = list.New(songItems(m.app.Playlists.SongsFor(playlist)), list.NewDefaultDelegate(), 0, 0)
			m.playlistSongList.Title = playlist.Name
			m.playlistSongList.SetSize(m.width-4, m.height-8)
			m.view = PlaylistSongsView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistSongsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.selectedPlaylist = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.playlistSongList.SelectedItem().(songItem); ok && m.selectedPlaylist != nil {
			queue := m.app.Playlists.SongsFor(*m.selectedPlaylist)
			m.err = m.app.Transport.PlaySong(item.song, queue)
			m.state = m.app.Transport.Snapshot()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistSongList, cmd = m.playlistSongList.Update(msg)
	return m, cmd
}

func (m *Model) refreshPlaylistSongs() {
	if m.selectedPlaylist == nil {
		return
	}
	if playlist, ok := m.app.Playlists.Get(m.selectedPlaylist.ID); ok {
		m.selectedPlaylist = &playlist
		m.playlistSongList.SetItems(songItems(m.app.Playlists.SongsFor(playlist)))
		return
	}
	// the playlist was deleted under us
	m.selectedPlaylist = nil
	m.view = PlaylistListView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LibraryView:
		m.songList, cmd = m.songList.Update(msg)
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case PlaylistSongsView:
		m.playlistSongList, cmd = m.playlistSongList.Update(msg)
	}
	return m, cmd
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForStore() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case event, ok := <-m.events:
			if !ok {
				return nil
			}
			return storeChangedMsg(event)
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LibraryView:
		body = m.songList.View()
	case PlaylistListView:
		body = m.playlistList.View()
	case PlaylistSongsView:
		body = m.playlistSongList.View()
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n%s", body, m.renderStatusBar(), helpView)
}

func (m *Model) renderStatusBar() string {
	var status string
	if m.state.Current == nil {
		status = styles.help.Render("Nothing playing")
	} else {
		icon := "⏸"
		if m.state.Playing {
			icon = "▶"
		}
		position := fmt.Sprintf("%s/%s",
			shared.FormatDuration(int(m.state.Position.Seconds())),
			shared.FormatDuration(int(m.state.Duration.Seconds())))
		status = fmt.Sprintf("%s %s - %s  %s",
			icon,
			styles.ok.Render(m.state.Current.Artist),
			m.state.Current.Title,
			styles.help.Render(position))
		if m.state.Repeat {
			status += styles.accent.Render("  repeat")
		}
	}

	coins := styles.accent.Render(fmt.Sprintf("  %d coins", m.app.Ledger.Coins()))
	if m.app.Ledger.AdFree() {
		coins += styles.ok.Render("  ad-free")
	}

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return status + coins
}
