package echoapi

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

// formFiles opens the multipart files of a request. Missing files are left nil so that validation reports them.
type formFiles struct {
	opened []multipart.File
}

func (ff *formFiles) get(ctx echo.Context, field string) (*upload.File, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Cause(err) == http.ErrMissingFile {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", field)
	}
	ff.opened = append(ff.opened, f)
	return &upload.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	}, nil
}

func (ff *formFiles) close() {
	for _, f := range ff.opened {
		_ = f.Close()
	}
}

// queryParam returns the trimmed query param name.
func queryParam(ctx echo.Context, name string) string {
	return core.CleanString(ctx.QueryParam(name))
}
