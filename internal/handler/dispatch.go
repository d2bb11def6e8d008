package handler

import (
	"context"
	"io"

	"github.com/dmorgan81/emotegen/internal/image"
	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/dmorgan81/emotegen/internal/task"
	"github.com/samber/do"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// Dispatcher runs one task per expression, all at once, and collects the
// outcomes in expression order.
type Dispatcher struct {
	runner   *task.Runner
	progress io.Writer
}

func NewDispatcher(i *do.Injector) (*Dispatcher, error) {
	runner, err := do.Invoke[*task.Runner](i)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		runner:   runner,
		progress: do.MustInvokeNamed[io.Writer](i, "progress"),
	}, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, img image.Encoded, expressions []string) []task.Outcome {
	outcomes := make([]task.Outcome, len(expressions))
	if len(expressions) == 0 {
		return outcomes
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("dispatcher")
	log.Info("dispatching", "tasks", len(expressions))

	bar := progressbar.NewOptions(len(expressions),
		progressbar.OptionSetDescription("generating expressions"),
		progressbar.OptionSetWriter(d.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var group errgroup.Group
	group.SetLimit(len(expressions))
	for idx, expression := range expressions {
		idx, expression := idx, expression
		group.Go(func() error {
			outcomes[idx] = d.runner.Run(ctx, expression, img)
			_ = bar.Add(1)
			return nil
		})
	}
	_ = group.Wait()
	_ = bar.Finish()

	return outcomes
}
