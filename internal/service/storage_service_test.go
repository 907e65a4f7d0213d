package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmshistory/kmshistory-v2/internal/config"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"go.uber.org/zap"
)

func newLocalStorage(t *testing.T, maxMB int) *StorageService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Quiz.MaxImageSizeMB = maxMB
	return NewStorageService(cfg, zap.NewNop())
}

// makeFileHeader 用内存里的 multipart 表单构造真实的 FileHeader
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestSaveQuestionImageRejectsBadInput(t *testing.T) {
	storage := newLocalStorage(t, 1)
	ctx := context.Background()

	if _, err := storage.SaveQuestionImage(ctx, nil); !errors.Is(err, util.ErrImageEmpty) {
		t.Errorf("nil file: got %v, want ErrImageEmpty", err)
	}
	if _, err := storage.SaveQuestionImage(ctx, makeFileHeader(t, "empty.png", nil)); !errors.Is(err, util.ErrImageEmpty) {
		t.Errorf("empty file: got %v, want ErrImageEmpty", err)
	}
	if _, err := storage.SaveQuestionImage(ctx, makeFileHeader(t, "notes.txt", []byte("hi"))); !errors.Is(err, util.ErrImageBadExtension) {
		t.Errorf("bad extension: got %v, want ErrImageBadExtension", err)
	}

	huge := bytes.Repeat([]byte{0xff}, (1<<20)+1)
	if _, err := storage.SaveQuestionImage(ctx, makeFileHeader(t, "big.png", huge)); !errors.Is(err, util.ErrImageTooLarge) {
		t.Errorf("oversized file: got %v, want ErrImageTooLarge", err)
	}
}

func TestSaveQuestionImageLocalProvider(t *testing.T) {
	storage := newLocalStorage(t, 1)
	local, ok := storage.Provider.(*LocalStorageProvider)
	if !ok {
		t.Fatalf("expected local provider, got %T", storage.Provider)
	}

	url, err := storage.SaveQuestionImage(context.Background(), makeFileHeader(t, "photo.JPG", []byte("fake-jpeg-bytes")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/questions/") {
		t.Errorf("url = %q, want /uploads/questions/ prefix", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("url = %q, extension should be normalized to lower case", url)
	}

	stored := filepath.Join(local.Config.LocalPath, strings.TrimPrefix(url, "/uploads/"))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "fake-jpeg-bytes" {
		t.Errorf("stored content mismatch")
	}
}
