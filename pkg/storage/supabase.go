package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStore uploads binary objects to a single Supabase Storage
// bucket. Objects are addressed by a stable public URL once uploaded.
type SupabaseStore struct {
	baseURL    string
	bucket     string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStore(baseURL, bucket, serviceKey string, timeout time.Duration) *SupabaseStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// objectName builds a collision-free name: millisecond timestamp plus a
// random suffix, so two uploads in the same instant cannot clash.
func objectName(contentType string) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("Image_%d_%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), extensionFor(contentType))
}

func (s *SupabaseStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	name := objectName(contentType)

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("artifact upload failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("artifact upload failed, got status %d with response body %s", res.StatusCode, string(body))
	}

	return s.PublicURL(name), nil
}

func (s *SupabaseStore) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name)
}
