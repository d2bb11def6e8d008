package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/emotegen/internal/log"
	"github.com/samber/do"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// FileUploader writes uploads into Dir. Names are used verbatim, spaces
// included.
type FileUploader struct {
	Dir string
}

func NewFileUploader(i *do.Injector) (*FileUploader, error) {
	return &FileUploader{Dir: do.MustInvokeNamed[string](i, "output_dir")}, nil
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	path := filepath.Join(u.Dir, params.Name)
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", path)
	return os.WriteFile(path, params.Data, 0644)
}

// MirrorUploader writes to Primary and then copies to every mirror. Only a
// Primary failure is returned; mirror failures are logged.
type MirrorUploader struct {
	Primary Uploader
	Mirrors []Uploader
}

func (u *MirrorUploader) Upload(ctx context.Context, params UploadParams) error {
	if err := u.Primary.Upload(ctx, params); err != nil {
		return err
	}
	for _, m := range u.Mirrors {
		if err := m.Upload(ctx, params); err != nil {
			log.FromContextOrDiscard(ctx).WithGroup("mirror").
				Error("mirror upload failed", "name", params.Name, "error", err)
		}
	}
	return nil
}
