package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

// formImage reads the first present multipart file among fields. Payloads
// over domain.MaxImageSize are rejected without reading them fully.
func formImage(c echo.Context, fields ...string) (ports.ImageFile, error) {
	for _, field := range fields {
		fh, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return ports.ImageFile{}, fmt.Errorf("%w: invalid multipart form", domain.ErrValidation)
		}
		if fh.Size > domain.MaxImageSize {
			return ports.ImageFile{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, domain.MaxImageSize)
		}

		f, err := fh.Open()
		if err != nil {
			return ports.ImageFile{}, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, domain.MaxImageSize+1))
		if err != nil {
			return ports.ImageFile{}, fmt.Errorf("read upload: %w", err)
		}
		return ports.ImageFile{Name: fh.Filename, Data: data}, nil
	}
	return ports.ImageFile{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, fields[0])
}

// decodeBase64Image accepts raw base64 or a data URL.
func decodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if base64.StdEncoding.DecodedLen(len(s)) > domain.MaxImageSize+3 {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, domain.MaxImageSize)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", domain.ErrValidation)
	}
	return data, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
