package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	storage "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"
)

type objectStorage interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
	DownloadFile(bucketId string, filePath string, urlOptions ...storage.UrlOptions) ([]byte, error)
}

// SupabaseStore keeps blobs in a Supabase Storage bucket.
type SupabaseStore struct {
	storage objectStorage
	bucket  string
}

func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}
	return &SupabaseStore{storage: client.Storage, bucket: bucket}, nil
}

func (s *SupabaseStore) Name() string {
	return "supabase"
}

func (s *SupabaseStore) Upload(ctx context.Context, name, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := "text/plain;charset=UTF-8"
	upsert := true
	_, err := s.storage.UploadFile(s.bucket, name, strings.NewReader(content), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload %s: %w", name, err)
	}
	return nil
}

func (s *SupabaseStore) Download(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := s.storage.DownloadFile(s.bucket, name)
	if err != nil {
		if isStorageNotFound(err) {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("supabase download %s: %w", name, err)
	}
	return string(data), nil
}

func isStorageNotFound(err error) bool {
	var storageErr *storage.StorageError
	if !errors.As(err, &storageErr) {
		return false
	}
	if storageErr.Status == http.StatusNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(storageErr.Message), "not found")
}
