package filestoresvc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
)

// localService writes files under a directory on disk. DEV/TEST only.
type localService struct {
	dir string
}

var _ core.FileStore = (*localService)(nil)

func NewLocalService(conf *core.Config) *localService {
	return &localService{dir: conf.Filestore.LocalDir}
}

func (svc localService) Store(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	if err := checkUpload(contentType, size); err != nil {
		return "", err
	}

	path := filepath.Join(svc.dir, filepath.Base(name))
	if err := os.MkdirAll(svc.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadSize)); err != nil {
		return "", errors.Wrap(err, "writing upload file")
	}
	return "file://" + path, nil
}
