package ingest

import (
	"context"

	"github.com/vvka-141/pulseload/internal/extract"
	"github.com/vvka-141/pulseload/internal/files/walker"
	"golang.org/x/sync/errgroup"
)

// walkParallel extracts up to workers files at once. Results reach consume
// one at a time and in walk order, so the first-seen record of a key is
// the same as in a sequential run.
func (r *Runner) walkParallel(ctx context.Context, ext extract.Extractor, root string, workers int, consume func(fileResult) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ordered := make(chan chan fileResult, workers)
	var walkErr error

	go func() {
		defer close(ordered)
		var g errgroup.Group
		g.SetLimit(workers)

		walkErr = r.walker.Walk(ctx, root, func(file walker.QuarterFile, err error) error {
			slot := make(chan fileResult, 1)
			select {
			case ordered <- slot:
			case <-ctx.Done():
				return ctx.Err()
			}
			if err != nil {
				slot <- fileResult{file: file, walkErr: err}
				return nil
			}
			g.Go(func() error {
				slot <- r.extractFile(ctx, ext, file)
				return nil
			})
			return nil
		})
		g.Wait() //nolint:errcheck
	}()

	var consumeErr error
	for slot := range ordered {
		fr := <-slot
		if consumeErr != nil {
			continue
		}
		if err := consume(fr); err != nil {
			consumeErr = err
			cancel()
		}
	}
	if consumeErr != nil {
		return consumeErr
	}
	return walkErr
}
