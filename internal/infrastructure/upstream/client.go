// Package upstream talks to the external classification service that owns
// image embeddings, similarity search and the master SKU table.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
	"github.com/partlens/recognition-api/internal/metrics"
)

const (
	defaultTimeout = 20 * time.Second

	// Responses larger than this are treated as malformed.
	maxResponseBytes = 8 << 20

	pathSearch  = "/search-similar"
	pathUpload  = "/upload-image"
	pathSkuList = "/sku-list"
	pathStats   = "/dataset-stats"
)

// Config captures the settings for reaching the classification service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin proxy over the classification service. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a Client. A default timeout is applied when none is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

var (
	_ ports.Searcher          = (*Client)(nil)
	_ ports.ReferenceUploader = (*Client)(nil)
	_ ports.CatalogSource     = (*Client)(nil)
)

// envelope is the response wrapper used by every upstream endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type searchData struct {
	Matches []struct {
		SkuCode         string   `json:"sku_code"`
		Description     string   `json:"description"`
		ImageName       string   `json:"image_name"`
		SimilarityScore *float64 `json:"similarity_score"`
	} `json:"matches"`
	TotalMatches int `json:"total_matches"`
}

type skuListData struct {
	Skus []struct {
		SkuCode     string `json:"sku_code"`
		Description string `json:"description"`
	} `json:"skus"`
}

type statsData struct {
	TotalRecords int64 `json:"total_records"`
	UniqueSkus   int64 `json:"unique_skus"`
	ClipRecords  int64 `json:"clip_records"`
	MasterSkus   int64 `json:"master_skus"`
}

type uploadData struct {
	ID          string `json:"id"`
	SkuCode     string `json:"sku_code"`
	Description string `json:"description"`
}

// Search posts the image to the similarity endpoint and maps matches to
// search results. The match name falls back to the stored image name.
func (c *Client) Search(ctx context.Context, image ports.ImageFile) ([]domain.SearchResult, error) {
	body, contentType, err := multipartBody(image, nil)
	if err != nil {
		return nil, err
	}

	var data searchData
	if err := c.do(ctx, http.MethodPost, pathSearch, body, contentType, &data); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(data.Matches))
	for _, m := range data.Matches {
		if m.SkuCode == "" || m.SimilarityScore == nil {
			c.fail(pathSearch, "malformed")
			return nil, fmt.Errorf("%w: match without sku_code or similarity_score", domain.ErrUpstream)
		}
		name := m.Description
		if name == "" {
			name = m.ImageName
		}
		results = append(results, domain.SearchResult{
			SKU:        m.SkuCode,
			Name:       name,
			Confidence: *m.SimilarityScore,
		})
	}
	return results, nil
}

// UploadImage registers a reference image for a SKU.
func (c *Client) UploadImage(ctx context.Context, in ports.UploadInput) (*ports.UploadReceipt, error) {
	body, contentType, err := multipartBody(in.Image, map[string]string{
		"sku_code": in.SKU,
		"username": in.Username,
	})
	if err != nil {
		return nil, err
	}

	var data uploadData
	if err := c.do(ctx, http.MethodPost, pathUpload, body, contentType, &data); err != nil {
		return nil, err
	}
	return &ports.UploadReceipt{ID: data.ID, SKU: data.SkuCode, Description: data.Description}, nil
}

func (c *Client) ListCodes(ctx context.Context) ([]domain.SkuCode, error) {
	var data skuListData
	if err := c.do(ctx, http.MethodGet, pathSkuList, nil, "", &data); err != nil {
		return nil, err
	}

	codes := make([]domain.SkuCode, 0, len(data.Skus))
	for _, s := range data.Skus {
		codes = append(codes, domain.SkuCode{Code: s.SkuCode, Description: s.Description})
	}
	return codes, nil
}

// Stats maps the upstream dataset statistics. Master table size is the code
// count when available, otherwise the distinct codes seen in images.
func (c *Client) Stats(ctx context.Context) (*domain.DatasetStats, error) {
	var data statsData
	if err := c.do(ctx, http.MethodGet, pathStats, nil, "", &data); err != nil {
		return nil, err
	}

	codes := data.MasterSkus
	if codes == 0 {
		codes = data.UniqueSkus
	}
	return &domain.DatasetStats{TotalCodes: codes, TotalImages: data.TotalRecords}, nil
}

// LookupCode resolves a code against the SKU list; the classification
// service exposes no single-code lookup.
func (c *Client) LookupCode(ctx context.Context, code string) (*domain.SkuCode, error) {
	codes, err := c.ListCodes(ctx)
	if err != nil {
		return nil, err
	}
	for _, sc := range codes {
		if strings.TrimSpace(sc.Code) == code {
			found := sc
			found.Code = code
			return &found, nil
		}
	}
	return nil, nil
}

// do performs the request, checks status and envelope, and decodes data into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build upstream request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		c.fail(path, "transport_error")
		c.log.Warn().Err(err).Str("endpoint", path).Msg("upstream unreachable")
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.fail(path, "transport_error")
		return fmt.Errorf("%w: %s: read body: %v", domain.ErrUpstream, path, err)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		c.fail(path, "rejected")
		detail := rejectionDetail(raw, resp.StatusCode)
		c.log.Info().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Msg("upstream rejected request")
		return fmt.Errorf("%w: %s", domain.ErrValidation, detail)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.fail(path, "http_error")
		c.log.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("body", truncate(raw, 256)).
			Msg("upstream returned error status")
		return fmt.Errorf("%w: %s: status %d", domain.ErrUpstream, path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.fail(path, "malformed")
		return fmt.Errorf("%w: %s: decode envelope: %v", domain.ErrUpstream, path, err)
	}
	if !env.Success {
		c.fail(path, "http_error")
		return fmt.Errorf("%w: %s: %s", domain.ErrUpstream, path, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.fail(path, "malformed")
			return fmt.Errorf("%w: %s: decode data: %v", domain.ErrUpstream, path, err)
		}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(path, "ok").Inc()
	return nil
}

// rejectionDetail pulls the human-readable reason out of a 4xx body. The
// classifier answers with {"detail": "..."} or the usual envelope.
func rejectionDetail(raw []byte, status int) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if d, ok := body.Detail.(string); ok && strings.TrimSpace(d) != "" {
			return strings.TrimSpace(d)
		}
		if m := strings.TrimSpace(body.Message); m != "" {
			return m
		}
	}
	return strings.ToLower(http.StatusText(status))
}

func (c *Client) fail(path, outcome string) {
	metrics.UpstreamRequestsTotal.WithLabelValues(path, outcome).Inc()
}

// multipartBody encodes the image as the "file" part plus any extra form fields.
func multipartBody(image ports.ImageFile, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := filepath.Base(image.Name)
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("multipart file: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("multipart file: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart close: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
