package main

import (
	"context"
	"fmt"

	"github.com/Zerofake/musicflow1/internal/importer"
	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/urfave/cli/v3"
)

// Import ingests the given audio files into the library.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file path is required", shared.ErrMissingArgument)
	}
	quiet := cmd.Bool("quiet")

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	progress := make(chan importer.ProgressUpdate, len(paths))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if !quiet {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, importErr := a.Importer.Import(ctx, progress, paths)
	close(progress)
	<-done

	r.writePlainln("Imported %d of %d files (%d rejected)", result.Added, result.Total, result.Rejected)
	return importErr
}
