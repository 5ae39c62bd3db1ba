// Package mediasvc stores uploaded media (face videos, event documents) on disk or on Cloudinary.
package mediasvc

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

type localStore struct {
	dir     string
	baseURL string
}

var _ upload.MediaStore = (*localStore)(nil)

// NewLocalStore saves files under dir; URLs are baseURL + the relative path.
func NewLocalStore(dir, baseURL string) upload.MediaStore {
	return &localStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *localStore) Save(_ context.Context, folder string, f upload.File) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(f.Name))
	sub := filepath.Clean("/" + folder)
	dir := filepath.Join(s.dir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating media dir")
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	defer dst.Close()

	if _, err = io.Copy(dst, f.Content); err != nil {
		return "", errors.Wrap(err, "writing media file")
	}
	return s.baseURL + path.Join("/", folder, name), nil
}
