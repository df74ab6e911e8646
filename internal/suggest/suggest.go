// Package suggest produces song recommendations from the listener's catalog
// using the Gemini API. The feature is optional and disabled unless an API
// key is configured.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// Suggestion is a single recommended song.
type Suggestion struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Service wraps the Gemini client behind a rate limiter.
type Service struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewService creates the suggestion service. A disabled configuration or a
// missing API key yields a service whose Suggest always returns
// [shared.ErrSuggestionsDisabled].
func NewService(ctx context.Context, cfg shared.SuggestionsConfig, logger *log.Logger) (*Service, error) {
	s := &Service{
		model:  cfg.Model,
		logger: logger.With("component", "suggest"),
	}
	if !cfg.Enabled || cfg.APIKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 10
	}

	s.client = client
	s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	return s, nil
}

func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Enabled reports whether suggestions can be requested.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Suggest asks for count recommendations based on the seed songs.
func (s *Service) Suggest(ctx context.Context, seed []models.Song, count int) ([]Suggestion, error) {
	if s.client == nil {
		return nil, shared.ErrSuggestionsDisabled
	}
	if count <= 0 {
		count = 5
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	model := s.client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(seed, count)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(fmt.Sprint(part))
		}
	}

	suggestions, err := parseSuggestions(sb.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info("received suggestions", "count", len(suggestions))
	return suggestions, nil
}

// buildPrompt asks for a strict JSON response so the answer parses without
// natural-language cleanup.
func buildPrompt(seed []models.Song, count int) string {
	var sb strings.Builder
	sb.WriteString("You are a music recommendation engine for a personal music library.\n")
	fmt.Fprintf(&sb, "Recommend %d songs similar to the listener's library below.\n", count)
	sb.WriteString("Respond ONLY with a JSON array of objects with keys ")
	sb.WriteString(`"title", "artist", "album" and "reason". No prose, no markdown.` + "\n")
	sb.WriteString("Library:\n")
	for _, song := range seed {
		fmt.Fprintf(&sb, "- %s - %s", song.Artist, song.Title)
		if song.Album != "" {
			fmt.Fprintf(&sb, " (%s)", song.Album)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseSuggestions decodes the model's reply, tolerating a markdown code
// fence around the JSON.
func parseSuggestions(raw string) ([]Suggestion, error) {
	text := strings.TrimSpace(raw)
	if after, found := strings.CutPrefix(text, "```json"); found {
		text = after
	} else if after, found := strings.CutPrefix(text, "```"); found {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	return suggestions, nil
}
