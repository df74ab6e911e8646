package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
)

func TestParseSuggestions(t *testing.T) {
	t.Run("PlainJSON", func(t *testing.T) {
		raw := `[{"title":"Song A","artist":"Artist A"},{"title":"Song B","artist":"Artist B","album":"Album B"}]`

		suggestions, err := parseSuggestions(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(suggestions) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
		}
		if suggestions[1].Album != "Album B" {
			t.Errorf("expected album, got %q", suggestions[1].Album)
		}
	})

	t.Run("FencedJSON", func(t *testing.T) {
		raw := "```json\n[{\"title\":\"Song A\",\"artist\":\"Artist A\"}]\n```"

		suggestions, err := parseSuggestions(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(suggestions) != 1 || suggestions[0].Title != "Song A" {
			t.Errorf("unexpected result: %+v", suggestions)
		}
	})

	t.Run("BareFence", func(t *testing.T) {
		raw := "```\n[]\n```"
		suggestions, err := parseSuggestions(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(suggestions) != 0 {
			t.Errorf("expected empty result, got %+v", suggestions)
		}
	})

	t.Run("Prose", func(t *testing.T) {
		if _, err := parseSuggestions("Here are some songs you might like!"); err == nil {
			t.Error("expected parse error for non-JSON reply")
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	seed := []models.Song{
		{Title: "Energia Cósmica", Artist: "Orion", Album: "Nebulosa"},
		{Title: "Ritmos da Noite", Artist: "Luna"},
	}

	prompt := buildPrompt(seed, 3)
	if !strings.Contains(prompt, "Orion - Energia Cósmica (Nebulosa)") {
		t.Errorf("prompt missing seed with album:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Luna - Ritmos da Noite") {
		t.Errorf("prompt missing seed without album:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Recommend 3 songs") {
		t.Errorf("prompt missing count:\n%s", prompt)
	}
}

func TestDisabledService(t *testing.T) {
	cfg := shared.SuggestionsConfig{Enabled: false}
	s, err := NewService(context.Background(), cfg, shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	defer s.Close()

	if s.Enabled() {
		t.Error("expected service disabled")
	}
	if _, err := s.Suggest(context.Background(), nil, 5); !errors.Is(err, shared.ErrSuggestionsDisabled) {
		t.Fatalf("expected ErrSuggestionsDisabled, got %v", err)
	}
}

func TestMissingKeyDisablesService(t *testing.T) {
	cfg := shared.SuggestionsConfig{Enabled: true, APIKey: ""}
	s, err := NewService(context.Background(), cfg, shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	defer s.Close()

	if s.Enabled() {
		t.Error("expected service disabled without an API key")
	}
}
