package bigquery

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/partlens/recognition-api/internal/core/domain"
)

func TestClientOptionsPrioritizesJSON(t *testing.T) {
	opts := clientOptions(Config{
		CredentialsJSON: `{"dummy": "value"}`,
		CredentialsFile: "/tmp/creds",
	})
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestClientOptionsWithFile(t *testing.T) {
	opts := clientOptions(Config{CredentialsFile: "/tmp/creds"})
	if len(opts) != 1 {
		t.Fatalf("expected 1 option when using credentials file, got %d", len(opts))
	}
}

func TestClientOptionsEmpty(t *testing.T) {
	opts := clientOptions(Config{})
	if len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}

func TestNewClient_RequiresSettings(t *testing.T) {
	full := Config{ProjectID: "proj", Dataset: "sku", MasterTable: "master_table", ImagesTable: "sku_images"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "project", mutate: func(c *Config) { c.ProjectID = " " }, wantErr: errProjectIDRequired},
		{name: "dataset", mutate: func(c *Config) { c.Dataset = "" }, wantErr: errDatasetRequired},
		{name: "master table", mutate: func(c *Config) { c.MasterTable = "" }, wantErr: errTableNameRequired},
		{name: "images table", mutate: func(c *Config) { c.ImagesTable = "" }, wantErr: errTableNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := NewClient(context.Background(), cfg, zerolog.Nop())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewClient_RejectsUnsafeIdentifiers(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		ProjectID:   "proj",
		Dataset:     "sku",
		MasterTable: "master`; DROP TABLE x; --",
		ImagesTable: "sku_images",
	}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bigquery identifier")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&googleapi.Error{Code: 404}))
	assert.False(t, isNotFound(&googleapi.Error{Code: 403}))
	assert.False(t, isNotFound(errors.New("other")))
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.ErrorIs(t, c.Ping(context.Background()), errClientNotInitialized)
	_, err := c.Query(context.Background(), "SELECT 1", nil)
	assert.ErrorIs(t, err, errClientNotInitialized)
	assert.NoError(t, c.Close())
}

func TestCodeRowAndResults(t *testing.T) {
	row := codeRow{
		SkuCode:     bigquery.NullString{StringVal: " SP-1 ", Valid: true},
		Description: bigquery.NullString{},
	}
	code := row.toDomain()
	assert.Equal(t, domain.SkuCode{Code: "SP-1"}, code)

	results := codesToResults([]domain.SkuCode{{Code: "SP-1", Description: "Valve"}})
	require.Len(t, results, 1)
	assert.Equal(t, domain.SearchResult{SKU: "SP-1", Name: "Valve", Confidence: 0}, results[0])
}
