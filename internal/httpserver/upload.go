package httpserver

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/models"
)

type uploadFunc func(ctx context.Context, id uuid.UUID, src io.Reader) (*models.Profile, error)

// formImage opens the "file" part of a multipart request.
func formImage(c echo.Context) (io.Reader, func(), error) {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
