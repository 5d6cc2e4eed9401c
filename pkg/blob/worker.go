package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WorkerStore talks to the upload/download worker that fronts the bucket.
type WorkerStore struct {
	baseURL    string
	httpClient *http.Client
}

func NewWorkerStore(baseURL string) *WorkerStore {
	return &WorkerStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *WorkerStore) Name() string {
	return "worker"
}

func (s *WorkerStore) Upload(ctx context.Context, name, content string) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("worker upload form: %w", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		return fmt.Errorf("worker upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("worker upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("worker upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("worker upload %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}

func (s *WorkerStore) Download(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/download/"+url.PathEscape(name), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("worker download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("worker download %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("worker download %s: %w", name, err)
	}

	return string(content), nil
}
