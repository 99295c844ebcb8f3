package echoapi

import (
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
)

type fileApi struct {
	store core.FileStore
}

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := fileApi{store: opts.FileStore}

	g.POST("/files", api.upload, jwt)
}

// upload stores a multipart file and returns its public URL. The URL is
// what document submissions reference.
func (api *fileApi) upload(ctx echo.Context) error {
	if _, err := getContextPrincipal(ctx); err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("a file is required"),
			core.FieldError{Field: "file", Error: "this field is required"})
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	// stored under a fresh name; the original extension is kept
	name := uuid.New().String() + filepath.Ext(fh.Filename)
	url, err := api.store.Store(ctx.Request().Context(), name, fh.Header.Get("Content-Type"), src, fh.Size)
	if err != nil {
		return errors.Wrap(err, "storing file")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"url": url})
}
