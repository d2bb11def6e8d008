package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/emotegen/internal/handler"
	"github.com/dmorgan81/emotegen/internal/image"
	"github.com/dmorgan81/emotegen/internal/inject"
	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/dmorgan81/emotegen/internal/param"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

type options struct {
	input        string
	output       string
	endpoint     string
	keyFile      string
	keyParam     string
	bucket       string
	prefix       string
	distribution string
	baseURL      string
	sheet        bool
	feed         bool
	logLevel     string
	noProgress   bool
}

func NewRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "emotegen",
		Short:         "Generate facial expressions of a character with RetroDiffusion",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "input image path")
	flags.StringVarP(&opts.output, "output", "o", "outputs", "output directory")
	flags.StringVar(&opts.endpoint, "endpoint", image.DefaultEndpoint, "edit API endpoint")
	flags.StringVar(&opts.keyFile, "key-file", param.DefaultKeyFile, "file holding the API key")
	flags.StringVar(&opts.keyParam, "key-param", "", "SSM parameter holding the API key, used when the key file and "+param.KeyEnv+" are empty")
	flags.StringVar(&opts.bucket, "bucket", "", "also upload every written file to this S3 bucket")
	flags.StringVar(&opts.prefix, "prefix", "", "key prefix for S3 uploads and CloudFront invalidations")
	flags.StringVar(&opts.distribution, "distribution", "", "CloudFront distribution to invalidate after uploading")
	flags.StringVar(&opts.baseURL, "base-url", "", "public URL of the output directory, used for feed links")
	flags.BoolVar(&opts.sheet, "sheet", false, "write an index.html contact sheet")
	flags.BoolVar(&opts.feed, "feed", false, "write a feed.xml RSS feed of saved expressions")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	ctx := log.NewContext(cmd.Context(), log.New(cmd.ErrOrStderr(), level))

	var progress io.Writer = cmd.ErrOrStderr()
	if opts.noProgress {
		progress = io.Discard
	}

	injector := inject.Setup(ctx, inject.Config{
		OutputDir:    opts.output,
		Endpoint:     opts.endpoint,
		KeyFile:      opts.keyFile,
		KeyParam:     opts.keyParam,
		Bucket:       opts.bucket,
		Prefix:       opts.prefix,
		Distribution: opts.distribution,
		BaseURL:      opts.baseURL,
		Sheet:        opts.sheet,
		Feed:         opts.feed,
		Progress:     progress,
	})
	defer func() { _ = injector.Shutdown() }()

	// The key is resolved first so a missing key aborts before any other work.
	if _, err := do.InvokeNamed[string](injector, "api_key"); err != nil {
		return err
	}

	if err := os.MkdirAll(opts.output, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	h, err := do.Invoke[*handler.Handler](injector)
	if err != nil {
		return err
	}
	out, err := h.Handle(ctx, handler.Input{ImagePath: opts.input})
	if err != nil {
		return err
	}

	for _, o := range out.Outcomes {
		fmt.Fprintln(cmd.OutOrStdout(), o)
	}
	return nil
}

func Execute(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
