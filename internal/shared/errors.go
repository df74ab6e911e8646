package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog and playlist errors
	ErrSongNotFound     = fmt.Errorf("song not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrDuplicateSong    = fmt.Errorf("song already in catalog")
	ErrInvalidName      = fmt.Errorf("invalid playlist name")
	ErrQuotaExceeded    = fmt.Errorf("playlist quota exceeded")
	ErrPartialImport    = fmt.Errorf("some songs could not be imported")

	// Ledger errors
	ErrInsufficientCoins = fmt.Errorf("insufficient coins")
	ErrLedgerMissing     = fmt.Errorf("user ledger record missing")

	// Playback errors
	ErrNoCurrentSong = fmt.Errorf("no current song")
	ErrPlaybackFail  = fmt.Errorf("playback failed")

	// Suggestion service errors
	ErrSuggestionsDisabled = fmt.Errorf("suggestion service disabled")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
