// Package importer scans audio files on disk and adds them to the catalog.
//
// Files are processed in chunks so large imports stay cancelable and emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"

	"github.com/Zerofake/musicflow1/internal/library"
	"github.com/Zerofake/musicflow1/internal/models"
)

// audioExtensions lists the file extensions accepted as audio.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// ProgressUpdate represents a progress event during an import.
type ProgressUpdate struct {
	Step    int    // Files processed so far
	Total   int    // Remaining total, shrinks as files are rejected
	Message string // Human-readable message for display
}

// Result summarizes a finished import.
type Result struct {
	Added    int // Songs newly added to the catalog
	Rejected int // Files skipped as non-audio or unreadable
	Total    int // Accepted file count after rejections
}

// Importer ingests files through the library service, which deduplicates
// against the catalog.
type Importer struct {
	library   *library.Service
	logger    *log.Logger
	chunkSize int
}

func New(lib *library.Service, chunkSize int, logger *log.Logger) *Importer {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &Importer{
		library:   lib,
		logger:    logger.With("component", "importer"),
		chunkSize: chunkSize,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (imp *Importer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import reads each path, extracts metadata and adds the songs to the
// catalog chunk by chunk. Non-audio or unreadable files are rejected and
// shrink the reported total; the rest of the import continues. Cancellation
// keeps the chunks already committed.
func (imp *Importer) Import(ctx context.Context, progress chan<- ProgressUpdate, paths []string) (*Result, error) {
	result := &Result{Total: len(paths)}

	var chunk []models.Song
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		added, err := imp.library.AddSongs(chunk)
		result.Added += added
		chunk = chunk[:0]
		return err
	}

	step := 0
	for _, path := range paths {
		select {
		case <-ctx.Done():
			if err := flush(); err != nil {
				imp.logger.Warn("flush after cancel failed", "error", err)
			}
			return result, ctx.Err()
		default:
		}

		step++
		song, err := imp.readFile(path)
		if err != nil {
			result.Rejected++
			result.Total--
			imp.logger.Warn("skipping file", "path", path, "error", err)
			imp.sendProgress(progress, ProgressUpdate{
				Step:    step,
				Total:   result.Total,
				Message: fmt.Sprintf("Skipped %s: %v", filepath.Base(path), err),
			})
			continue
		}

		chunk = append(chunk, song)
		imp.sendProgress(progress, ProgressUpdate{
			Step:    step,
			Total:   result.Total,
			Message: fmt.Sprintf("[%d/%d] %s - %s", step, result.Total, song.Artist, song.Title),
		})

		if len(chunk) >= imp.chunkSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}

	imp.logger.Info("import finished", "added", result.Added, "rejected", result.Rejected)
	return result, nil
}

// readFile builds a song record from the file at path.
func (imp *Importer) readFile(path string) (models.Song, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !audioExtensions[ext] {
		return models.Song{}, fmt.Errorf("not an audio file")
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to stat file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	name := info.Name()
	song := models.Song{
		// The name plus modification time identifies the file, so importing
		// it twice yields the same id and the catalog deduplicates it.
		ID:       fmt.Sprintf("%s-%d", name, info.ModTime().UnixMilli()),
		Title:    strings.TrimSuffix(name, ext),
		Artist:   "Artista Desconhecido",
		AudioSrc: "file://" + abs,
	}

	if meta, err := readTags(path); err == nil {
		if meta.Title() != "" {
			song.Title = meta.Title()
		}
		if meta.Artist() != "" {
			song.Artist = meta.Artist()
		}
		song.Album = meta.Album()
	}

	if ext == ".mp3" {
		if duration, err := mp3Duration(path); err == nil {
			song.Duration = duration
		}
	}

	return song, nil
}

func readTags(path string) (tag.Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return tag.ReadFrom(file)
}

// mp3Duration decodes the stream headers to compute the track length in
// seconds.
func mp3Duration(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return int(format.SampleRate.D(streamer.Len()).Seconds()), nil
}
