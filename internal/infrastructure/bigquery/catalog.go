package bigquery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

// DefaultSearchLimit bounds the direct-query search backend.
const DefaultSearchLimit = 10

var (
	_ ports.CatalogSource = (*Catalog)(nil)
	_ ports.Searcher      = (*Catalog)(nil)
)

// Catalog serves codes, stats and a code-listing search from the warehouse.
type Catalog struct {
	client      *Client
	searchLimit int
}

func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client, searchLimit: DefaultSearchLimit}
}

type codeRow struct {
	SkuCode     bigquery.NullString `bigquery:"sku_code"`
	Description bigquery.NullString `bigquery:"description"`
}

func (r codeRow) toDomain() domain.SkuCode {
	return domain.SkuCode{
		Code:        strings.TrimSpace(r.SkuCode.StringVal),
		Description: strings.TrimSpace(r.Description.StringVal),
	}
}

type countRow struct {
	Total int64 `bigquery:"total"`
}

func (c *Catalog) ListCodes(ctx context.Context) ([]domain.SkuCode, error) {
	sql := fmt.Sprintf(
		"SELECT sku_code, description FROM %s WHERE sku_code IS NOT NULL ORDER BY sku_code",
		c.client.tableRef(c.client.master),
	)
	return c.queryCodes(ctx, sql, nil)
}

// Stats runs the two count queries concurrently.
func (c *Catalog) Stats(ctx context.Context) (*domain.DatasetStats, error) {
	var stats domain.DatasetStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.count(gctx, fmt.Sprintf(
			"SELECT COUNT(DISTINCT sku_code) AS total FROM %s",
			c.client.tableRef(c.client.master),
		))
		stats.TotalCodes = n
		return err
	})
	g.Go(func() error {
		n, err := c.count(gctx, fmt.Sprintf(
			"SELECT COUNT(*) AS total FROM %s",
			c.client.tableRef(c.client.images),
		))
		stats.TotalImages = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Catalog) LookupCode(ctx context.Context, code string) (*domain.SkuCode, error) {
	sql := fmt.Sprintf(
		"SELECT sku_code, description FROM %s WHERE sku_code = @code LIMIT 1",
		c.client.tableRef(c.client.master),
	)
	codes, err := c.queryCodes(ctx, sql, []bigquery.QueryParameter{{Name: "code", Value: code}})
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return &codes[0], nil
}

// Search does not compare embeddings; it lists catalog codes with zero
// confidence so clients can still offer a manual pick.
func (c *Catalog) Search(ctx context.Context, _ ports.ImageFile) ([]domain.SearchResult, error) {
	sql := fmt.Sprintf(
		"SELECT sku_code, description FROM %s WHERE sku_code IS NOT NULL ORDER BY sku_code LIMIT @limit",
		c.client.tableRef(c.client.master),
	)
	codes, err := c.queryCodes(ctx, sql, []bigquery.QueryParameter{{Name: "limit", Value: c.searchLimit}})
	if err != nil {
		return nil, err
	}
	return codesToResults(codes), nil
}

func codesToResults(codes []domain.SkuCode) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(codes))
	for _, sc := range codes {
		results = append(results, domain.SearchResult{SKU: sc.Code, Name: sc.Description, Confidence: 0})
	}
	return results
}

func (c *Catalog) queryCodes(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]domain.SkuCode, error) {
	it, err := c.client.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("%w: bigquery: %v", domain.ErrUpstream, err)
	}

	var codes []domain.SkuCode
	for {
		var row codeRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: bigquery: read row: %v", domain.ErrUpstream, err)
		}
		codes = append(codes, row.toDomain())
	}
	return codes, nil
}

func (c *Catalog) count(ctx context.Context, sql string) (int64, error) {
	it, err := c.client.Query(ctx, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: bigquery: %v", domain.ErrUpstream, err)
	}
	var row countRow
	if err := it.Next(&row); err != nil {
		if errors.Is(err, iterator.Done) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: bigquery: read count: %v", domain.ErrUpstream, err)
	}
	return row.Total, nil
}
