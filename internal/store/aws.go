package store

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type S3Uploader struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

func NewS3Uploader(i *do.Injector) (*S3Uploader, error) {
	return &S3Uploader{
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: do.MustInvokeNamed[string](i, "bucket"),
		Prefix: do.MustInvokeNamed[string](i, "prefix"),
	}, nil
}

// Key is the object key used for an upload named name.
func (u *S3Uploader) Key(name string) string {
	return path.Join(u.Prefix, name)
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) error {
	key := u.Key(params.Name)
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"key", key,
		"content-type", params.ContentType,
		"bucket", u.Bucket,
	)
	log.Info("uploading to s3")

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	return err
}

type CloudFrontInvalidator struct {
	Client       *cloudfront.Client
	Distribution string
	Prefix       string
}

func NewCloudFrontInvalidator(i *do.Injector) (*CloudFrontInvalidator, error) {
	return &CloudFrontInvalidator{
		Client:       do.MustInvoke[*cloudfront.Client](i),
		Distribution: do.MustInvokeNamed[string](i, "distribution"),
		Prefix:       do.MustInvokeNamed[string](i, "prefix"),
	}, nil
}

func (i *CloudFrontInvalidator) Invalidate(ctx context.Context, names []string) error {
	paths := lo.Map(names, func(name string, _ int) string {
		return "/" + escapePath(path.Join(i.Prefix, name))
	})
	log := log.FromContextOrDiscard(ctx).WithGroup("cloudfront").With("paths", paths, "distribution", i.Distribution)
	log.Info("invalidating paths")

	_, err := i.Client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(i.Distribution),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(time.Now().UTC().Format("20060102150405.000000000")),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	return err
}

// escapePath percent-encodes each segment; CloudFront rejects raw spaces.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	return strings.Join(lo.Map(segments, func(s string, _ int) string {
		return url.PathEscape(s)
	}), "/")
}
