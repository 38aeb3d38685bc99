package integrations

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// StorageConfig configures a Supabase Storage signer.
type StorageConfig struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	TTL        time.Duration
}

// StorageSigner issues time-limited URLs for stored receipt images.
type StorageSigner struct {
	cfg    StorageConfig
	client *http.Client
}

// NewStorageSigner creates a signer. TTL defaults to one hour.
func NewStorageSigner(cfg StorageConfig, httpClient *http.Client) *StorageSigner {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &StorageSigner{cfg: cfg, client: newHTTPClient(httpClient)}
}

func (s *StorageSigner) Name() string { return "supabase-storage" }

// SignURL returns an absolute signed URL for an object path in the bucket.
func (s *StorageSigner) SignURL(ctx context.Context, path string) (string, error) {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "", model.Errorf(model.ErrValidation, "empty object path")
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.cfg.BaseURL, s.cfg.Bucket, path)

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	headers := map[string]string{
		"Authorization": "Bearer " + s.cfg.ServiceKey,
		"apikey":        s.cfg.ServiceKey,
	}
	body := map[string]int64{"expiresIn": int64(s.cfg.TTL / time.Second)}
	if err := doJSON(ctx, s.client, http.MethodPost, endpoint, headers, body, &out); err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	if out.SignedURL == "" {
		return "", model.Errorf(model.ErrUpstream, "sign %s: empty signed url", path)
	}
	if strings.HasPrefix(out.SignedURL, "http://") || strings.HasPrefix(out.SignedURL, "https://") {
		return out.SignedURL, nil
	}
	return s.cfg.BaseURL + "/storage/v1" + out.SignedURL, nil
}
