package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

func TestUploadLimit(t *testing.T) {
	readAll := func(c echo.Context) error {
		if _, err := io.ReadAll(c.Request().Body); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	}
	mw := UploadLimit("1K")

	cases := []struct {
		name        string
		size        int
		knownLength bool
		wantErr     error
	}{
		{"within limit", 512, true, nil},
		{"content-length over limit", 4096, true, domain.ErrPayloadTooLarge},
		{"streamed body over limit", 4096, false, domain.ErrPayloadTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, tc.size)))
			if !tc.knownLength {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := mw(readAll)(c)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
