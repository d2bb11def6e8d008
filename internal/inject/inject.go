package inject

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/emotegen/internal/feed"
	"github.com/dmorgan81/emotegen/internal/handler"
	"github.com/dmorgan81/emotegen/internal/image"
	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/dmorgan81/emotegen/internal/page"
	"github.com/dmorgan81/emotegen/internal/param"
	"github.com/dmorgan81/emotegen/internal/store"
	"github.com/dmorgan81/emotegen/internal/task"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// RequestTimeout bounds a single edit request.
const RequestTimeout = 120 * time.Second

type Config struct {
	OutputDir    string
	Endpoint     string
	KeyFile      string
	KeyParam     string
	Bucket       string
	Prefix       string
	Distribution string
	BaseURL      string
	Sheet        bool
	Feed         bool
	Progress     io.Writer
}

func Setup(ctx context.Context, cfg Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})

	// AWS clients are only resolved when a bucket, distribution or key
	// parameter is configured.
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: RequestTimeout})

	do.ProvideNamedValue[string](injector, "output_dir", cfg.OutputDir)
	do.ProvideNamedValue[string](injector, "endpoint", lo.Ternary(cfg.Endpoint != "", cfg.Endpoint, image.DefaultEndpoint))
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "prefix", cfg.Prefix)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)
	do.ProvideNamedValue[string](injector, "base_url", cfg.BaseURL)
	do.ProvideNamedValue[io.Writer](injector, "progress", lo.Ternary[io.Writer](cfg.Progress != nil, cfg.Progress, io.Discard))
	do.ProvideValue[handler.Options](injector, handler.Options{Sheet: cfg.Sheet, Feed: cfg.Feed})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.ProvideNamed[string](injector, "api_key", func(i *do.Injector) (string, error) {
		return param.LoadAPIKey(ctx, param.KeySources{
			File:  cfg.KeyFile,
			Env:   param.KeyEnv,
			Param: cfg.KeyParam,
			Fetcher: func() (param.Fetcher, error) {
				return do.Invoke[param.Fetcher](i)
			},
		})
	})

	do.Provide[image.Editor](injector, image.NewRetroDiffusionEditor)
	do.Provide[store.Uploader](injector, func(i *do.Injector) (store.Uploader, error) {
		files, err := store.NewFileUploader(i)
		if err != nil {
			return nil, err
		}
		if cfg.Bucket == "" {
			return files, nil
		}
		mirror, err := store.NewS3Uploader(i)
		if err != nil {
			return nil, err
		}
		return &store.MirrorUploader{Primary: files, Mirrors: []store.Uploader{mirror}}, nil
	})
	do.Provide[store.Invalidator](injector, func(i *do.Injector) (store.Invalidator, error) {
		if cfg.Distribution == "" {
			return store.NopInvalidator{}, nil
		}
		return store.NewCloudFrontInvalidator(i)
	})
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*feed.Generator](injector, feed.NewGenerator)

	do.Provide[*task.Runner](injector, task.NewRunner)
	do.Provide[*handler.Dispatcher](injector, handler.NewDispatcher)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
