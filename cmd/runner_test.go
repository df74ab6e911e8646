package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Zerofake/musicflow1/internal/app"
	"github.com/Zerofake/musicflow1/internal/shared"
	tu "github.com/Zerofake/musicflow1/internal/testing"
	"github.com/urfave/cli/v3"
)

func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"

	a, err := app.New(context.Background(), config, shared.NewLogger(nil), app.WithDevice(tu.NewFakeDevice()))
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(nil),
		Output: output,
		App:    a,
	})
	return runner, output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	root := &cli.Command{Name: "musicflow", Commands: r.register()}
	return root.Run(context.Background(), append([]string{"musicflow"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register wires every command", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "import", "songs", "playlists", "play", "store", "suggest", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %d to be %s, got %s", i, name, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"coins": 3}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if got := output.String(); got != "{\"coins\":3}\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("writeJSON with failing writer", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writeJSON("data", false); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestSongsCommands(t *testing.T) {
	t.Run("list prints seeded songs", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := run(t, runner, "songs", "list"); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Energia Cósmica") || !strings.Contains(got, "Ritmos da Noite") {
			t.Errorf("expected seeded songs in output, got:\n%s", got)
		}
	})

	t.Run("delete requires an id", func(t *testing.T) {
		runner, _ := testRunner(t)
		if err := run(t, runner, "songs", "delete"); err == nil {
			t.Error("expected error without song id")
		}
	})
}

func TestPlaylistsCommands(t *testing.T) {
	t.Run("create then list", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := run(t, runner, "playlists", "create", "Treino", "-d", "academia"); err != nil {
			t.Fatalf("playlists create failed: %v", err)
		}
		if err := run(t, runner, "playlists", "list"); err != nil {
			t.Fatalf("playlists list failed: %v", err)
		}

		if got := output.String(); !strings.Contains(got, "Treino") {
			t.Errorf("expected created playlist in output, got:\n%s", got)
		}
	})

	t.Run("show unknown playlist fails", func(t *testing.T) {
		runner, _ := testRunner(t)
		if err := run(t, runner, "playlists", "show", "nope"); err == nil {
			t.Error("expected error for unknown playlist")
		}
	})

	t.Run("create with over-long name reports invalid name", func(t *testing.T) {
		runner, _ := testRunner(t)

		err := run(t, runner, "playlists", "create", strings.Repeat("x", 201))
		if !errors.Is(err, shared.ErrInvalidName) {
			t.Errorf("expected ErrInvalidName, got %v", err)
		}
	})

	t.Run("create at quota reports quota exceeded", func(t *testing.T) {
		runner, _ := testRunner(t)

		// the seeded database starts with two playlists
		existing := len(runner.app.Playlists.Playlists())
		for i := existing; i < runner.config.Limits.MaxPlaylists; i++ {
			if err := run(t, runner, "playlists", "create", fmt.Sprintf("Mix %d", i)); err != nil {
				t.Fatalf("create %d failed: %v", i, err)
			}
		}

		err := run(t, runner, "playlists", "create", "One Too Many")
		if !errors.Is(err, shared.ErrQuotaExceeded) {
			t.Errorf("expected ErrQuotaExceeded, got %v", err)
		}
	})
}

func TestStoreCommands(t *testing.T) {
	t.Run("add then spend", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := run(t, runner, "store", "add", "5"); err != nil {
			t.Fatalf("store add failed: %v", err)
		}
		if err := run(t, runner, "store", "spend", "2"); err != nil {
			t.Fatalf("store spend failed: %v", err)
		}
		if err := run(t, runner, "store", "status"); err != nil {
			t.Fatalf("store status failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Coins: 3") {
			t.Errorf("expected remaining balance in output, got:\n%s", got)
		}
		if !strings.Contains(got, "Ad-free until") {
			t.Errorf("expected active ad-free window in output, got:\n%s", got)
		}
	})

	t.Run("spend beyond balance fails", func(t *testing.T) {
		runner, _ := testRunner(t)
		if err := run(t, runner, "store", "spend", "10"); err == nil {
			t.Error("expected error when balance is short")
		}
	})

	t.Run("rejects invalid amounts", func(t *testing.T) {
		runner, _ := testRunner(t)
		for _, amount := range []string{"zero", "-1", "0"} {
			if err := run(t, runner, "store", "add", amount); err == nil {
				t.Errorf("expected error for amount %q", amount)
			}
		}
	})
}

func TestImportCommand(t *testing.T) {
	t.Run("requires file arguments", func(t *testing.T) {
		runner, _ := testRunner(t)
		if err := run(t, runner, "import"); err == nil {
			t.Error("expected error without file paths")
		}
	})
}

func TestSuggestCommand(t *testing.T) {
	t.Run("disabled without api key", func(t *testing.T) {
		runner, _ := testRunner(t)
		if err := run(t, runner, "suggest"); err == nil {
			t.Error("expected error while suggestions are disabled")
		}
	})
}
