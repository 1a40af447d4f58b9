package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type stubAvatarService struct {
	filename string
	data     []byte
	stored   map[string][]byte
}

func (s *stubAvatarService) Upload(_ context.Context, userID, filename string, data []byte) error {
	s.filename, s.data = filename, data
	return nil
}

func (s *stubAvatarService) Remove(_ context.Context, userID string) error {
	delete(s.stored, userID)
	return nil
}

func (s *stubAvatarService) Get(_ context.Context, userID string) ([]byte, error) {
	b, ok := s.stored[userID]
	if !ok {
		return nil, domain.ErrAvatarNotFound
	}
	return b, nil
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAvatarHandler_Upload(t *testing.T) {
	e := newEcho()
	svc := &stubAvatarService{}
	handler := NewAvatarHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, "avatar", "me.png", []byte("image-bytes")), rec)
	withSession(c, &domain.User{ID: "u1"}, "tok")

	if err := handler.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.filename != "me.png" || string(svc.data) != "image-bytes" {
		t.Fatalf("unexpected upload %q %q", svc.filename, svc.data)
	}
}

func TestAvatarHandler_Upload_WrongField(t *testing.T) {
	e := newEcho()
	handler := NewAvatarHandler(&stubAvatarService{})

	c := e.NewContext(multipartRequest(t, "picture", "me.png", []byte("x")), httptest.NewRecorder())
	withSession(c, &domain.User{ID: "u1"}, "tok")

	if err := handler.Upload(c); !errors.Is(err, domain.ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestAvatarHandler_Get(t *testing.T) {
	e := newEcho()
	handler := NewAvatarHandler(&stubAvatarService{stored: map[string][]byte{"u1": []byte("png")}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users/u1/avatar", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get(echo.HeaderContentType) != "image/png" || rec.Body.String() != "png" {
		t.Fatalf("unexpected response %q %q", rec.Header().Get(echo.HeaderContentType), rec.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/users/u2/avatar", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := handler.Get(c); !errors.Is(err, domain.ErrAvatarNotFound) {
		t.Fatalf("expected ErrAvatarNotFound, got %v", err)
	}
}
