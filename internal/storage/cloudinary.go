package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage хранит изображения в Cloudinary. Путь файла без расширения служит public_id.
type CloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	cloudName  string
	baseURL    string
	httpClient *http.Client
}

func NewCloudinaryStorage(cfg Config) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" {
		return nil, fmt.Errorf("cloud name is required for Cloudinary storage")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://res.cloudinary.com/%s/image/upload", cfg.CloudName)
	}

	return &CloudinaryStorage{
		cld:        cld,
		cloudName:  cfg.CloudName,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func publicID(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func (s *CloudinaryStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	overwrite := true
	resp, err := s.cld.Upload.Upload(ctx, reader, uploader.UploadParams{
		PublicID:  publicID(path),
		Overwrite: &overwrite,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary upload error: %s", resp.Error.Message)
	}
	return nil
}

func (s *CloudinaryStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(s.baseURL, path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from cloudinary: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, path string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID(path)})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	// "not found" для удаления не ошибка
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy error: %s", resp.Error.Message)
	}
	return nil
}

func (s *CloudinaryStorage) asset(ctx context.Context, path string) (*admin.AssetResult, error) {
	resp, err := s.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: publicID(path)})
	if err != nil {
		return nil, fmt.Errorf("failed to get cloudinary asset: %w", err)
	}
	if resp.Error.Message != "" {
		if strings.Contains(strings.ToLower(resp.Error.Message), "not found") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cloudinary asset error: %s", resp.Error.Message)
	}
	return resp, nil
}

func (s *CloudinaryStorage) Exists(ctx context.Context, path string) (bool, error) {
	if _, err := s.asset(ctx, path); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CloudinaryStorage) GetURL(ctx context.Context, path string) (string, error) {
	return joinURL(s.baseURL, path), nil
}

// GetSignedURL - ассеты загружаются публичными, подпись не нужна
func (s *CloudinaryStorage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.GetURL(ctx, path)
}

func (s *CloudinaryStorage) GetSize(ctx context.Context, path string) (int64, error) {
	resp, err := s.asset(ctx, path)
	if err != nil {
		return 0, err
	}
	return int64(resp.Bytes), nil
}
