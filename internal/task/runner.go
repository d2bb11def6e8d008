package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dmorgan81/emotegen/internal/image"
	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/dmorgan81/emotegen/internal/prompt"
	"github.com/dmorgan81/emotegen/internal/store"
	"github.com/samber/do"
)

const MaxAttempts = 3

// LinearBackoff waits 1+attempt seconds after the given failed attempt.
func LinearBackoff(attempt int) time.Duration {
	return time.Duration(1+attempt) * time.Second
}

type Runner struct {
	editor   image.Editor
	uploader store.Uploader
	attempts int
	backoff  func(attempt int) time.Duration
}

type Option func(*Runner)

func WithBackoff(backoff func(attempt int) time.Duration) Option {
	return func(r *Runner) { r.backoff = backoff }
}

func WithAttempts(n int) Option {
	return func(r *Runner) { r.attempts = max(n, 1) }
}

func New(editor image.Editor, uploader store.Uploader, opts ...Option) *Runner {
	r := &Runner{
		editor:   editor,
		uploader: uploader,
		attempts: MaxAttempts,
		backoff:  LinearBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewRunner(i *do.Injector) (*Runner, error) {
	editor, err := do.Invoke[image.Editor](i)
	if err != nil {
		return nil, err
	}
	return New(editor, do.MustInvoke[store.Uploader](i)), nil
}

// Run produces exactly one Outcome for label. It never panics.
func (r *Runner) Run(ctx context.Context, label string, img image.Encoded) (outcome Outcome) {
	log := log.FromContextOrDiscard(ctx).WithGroup("runner").With("label", label)
	outcome = Outcome{Label: label, Kind: Failed}

	defer func() {
		if v := recover(); v != nil {
			log.Error("recovered panic", "panic", v)
			outcome = Outcome{Label: label, Kind: Failed, Err: fmt.Errorf("panic: %v", v)}
		}
	}()

	data, found, err := r.edit(ctx, label, image.Params{
		Prompt:           prompt.Build(label),
		InputImageBase64: string(img),
	})
	if err != nil {
		log.Error("edit failed", "error", err)
		outcome.Err = err
		return outcome
	}
	if !found {
		outcome.Kind = Empty
		return outcome
	}

	name := label + ".png"
	if err := r.uploader.Upload(ctx, store.UploadParams{
		Name:        name,
		Data:        data,
		ContentType: "image/png",
		Metadata:    map[string]string{"expression": label, "prompt": prompt.Build(label)},
	}); err != nil {
		log.Error("save failed", "error", err)
		outcome.Err = err
		return outcome
	}

	log.Info("saved", "name", name)
	return Outcome{Label: label, Kind: Saved, Name: name}
}

// edit retries every request failure the same way. A malformed image
// payload is not a request failure and is returned at once.
func (r *Runner) edit(ctx context.Context, label string, params image.Params) ([]byte, bool, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("runner").With("label", label)

	type result struct {
		data  []byte
		found bool
	}
	res, err := retry.DoWithData(
		func() (result, error) {
			data, found, err := r.editor.Edit(ctx, params)
			var decodeErr *image.DecodeError
			if errors.As(err, &decodeErr) {
				return result{}, retry.Unrecoverable(err)
			}
			return result{data, found}, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.attempts)),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return r.backoff(int(n) + 1)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("attempt failed", "attempt", n+1, "of", r.attempts, "error", err)
		}),
	)
	if err != nil {
		var decodeErr *image.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, false, decodeErr
		}
		return nil, false, fmt.Errorf("%s: %w", label, err)
	}
	return res.data, res.found, nil
}
