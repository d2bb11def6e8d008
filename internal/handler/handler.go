package handler

import (
	"context"

	"github.com/dmorgan81/emotegen/internal/feed"
	"github.com/dmorgan81/emotegen/internal/image"
	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/dmorgan81/emotegen/internal/page"
	"github.com/dmorgan81/emotegen/internal/prompt"
	"github.com/dmorgan81/emotegen/internal/store"
	"github.com/dmorgan81/emotegen/internal/task"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const title = "Expressions"

type Input struct {
	ImagePath string
}

type Output struct {
	Outcomes []task.Outcome
}

// Options toggles the extra artifacts written next to the images.
type Options struct {
	Sheet bool
	Feed  bool
}

type Handler struct {
	dispatcher  *Dispatcher
	uploader    store.Uploader
	invalidator store.Invalidator
	templator   *page.Templator
	feed        *feed.Generator
	opts        Options
}

func NewHandler(i *do.Injector) (*Handler, error) {
	dispatcher, err := do.Invoke[*Dispatcher](i)
	if err != nil {
		return nil, err
	}
	return &Handler{
		dispatcher:  dispatcher,
		uploader:    do.MustInvoke[store.Uploader](i),
		invalidator: do.MustInvoke[store.Invalidator](i),
		templator:   do.MustInvoke[*page.Templator](i),
		feed:        do.MustInvoke[*feed.Generator](i),
		opts:        do.MustInvoke[Options](i),
	}, nil
}

// Handle prepares the input image once and runs every expression against it.
// Only preparation errors are returned; per-expression failures are reported
// in Output.
func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	expressions := prompt.Expressions
	log := log.FromContextOrDiscard(ctx).WithGroup("handler").With("input", input.ImagePath)
	log.Info("handling run", "expressions", len(expressions))

	img, err := image.Prepare(input.ImagePath)
	if err != nil {
		return Output{}, err
	}

	outcomes := h.dispatcher.Dispatch(ctx, img, expressions)
	log.Info("dispatch complete",
		"saved", lo.CountBy(outcomes, func(o task.Outcome) bool { return o.Kind == task.Saved }),
		"empty", lo.CountBy(outcomes, func(o task.Outcome) bool { return o.Kind == task.Empty }),
		"failed", lo.CountBy(outcomes, func(o task.Outcome) bool { return o.Kind == task.Failed }),
	)

	h.publish(ctx, outcomes)
	return Output{Outcomes: outcomes}, nil
}

// publish writes the optional sheet and feed and invalidates everything that
// was written. Failures here never affect the outcomes.
func (h *Handler) publish(ctx context.Context, outcomes []task.Outcome) {
	log := log.FromContextOrDiscard(ctx).WithGroup("publish")

	saved := lo.Filter(outcomes, func(o task.Outcome, _ int) bool { return o.Kind == task.Saved })
	written := lo.Map(saved, func(o task.Outcome, _ int) string { return o.Name })

	if h.opts.Sheet {
		html, err := h.templator.Template(ctx, page.Params{
			Title: title,
			Items: lo.Map(outcomes, func(o task.Outcome, _ int) page.Item {
				return page.Item{Label: o.Label, Image: o.Name, Status: o.Kind.String()}
			}),
		})
		if err == nil {
			err = h.uploader.Upload(ctx, store.UploadParams{Name: "index.html", Data: html, ContentType: "text/html"})
		}
		if err != nil {
			log.Error("writing contact sheet failed", "error", err)
		} else {
			written = append(written, "index.html")
		}
	}

	if h.opts.Feed {
		rss, err := h.feed.Generate(ctx, title, lo.Map(saved, func(o task.Outcome, _ int) feed.Entry {
			return feed.Entry{Label: o.Label, Name: o.Name}
		}))
		if err == nil {
			err = h.uploader.Upload(ctx, store.UploadParams{Name: "feed.xml", Data: rss, ContentType: "application/rss+xml"})
		}
		if err != nil {
			log.Error("writing feed failed", "error", err)
		} else {
			written = append(written, "feed.xml")
		}
	}

	if len(written) == 0 {
		return
	}
	if err := h.invalidator.Invalidate(ctx, written); err != nil {
		log.Error("invalidation failed", "error", err)
	}
}
