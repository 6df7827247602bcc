// Command catalog-ingest bulk-imports supplier product feeds into the catalog.
//
// Feeds are gzip-compressed TSV files with one product per line:
//
//	sku <TAB> name <TAB> description <TAB> price <TAB> stock <TAB> category_id
//
// Several suppliers may carry the same SKU. Feed order is priority order: when
// a SKU appears in more than one feed, the earliest feed wins and later
// occurrences are skipped. Per-file bloom filters make the cross-feed check
// cheap; a false positive drops a low-priority duplicate at worst.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/corvel/storefront/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	feedFields    = 6
)

type feedRow struct {
	sku         string
	name        string
	description string
	price       decimal.Decimal
	stock       int
	categoryID  string
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing feed files")
	flag.StringVar(&pattern, "pattern", "feed*.tsv.gz", "glob pattern for feed files, matched in lexical order")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no feed files match %s in %s", pattern, dataDir)
	}

	// Pass 1: build one SKU bloom filter per feed, concurrently.
	slog.Info("pass 1: building SKU filters", slog.Int("files", len(files)))

	filters, err := buildSKUFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build SKU filters")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Pass 2: write feeds in priority order, skipping SKUs owned by an
	// earlier feed.
	slog.Info("pass 2: importing feeds")

	var total uint64
	for i, f := range files {
		n, err := importFeed(ctx, pool, i, f, filters)
		if err != nil {
			return errors.Wrapf(err, "import feed %s", f)
		}
		total += n
	}

	slog.Info("import complete", slog.Uint64("products", total))

	return nil
}

// buildSKUFilters creates a bloom filter of SKUs for each feed file.
func buildSKUFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFeed(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFeed(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			row, ok := parseRow(line)
			if !ok {
				return
			}
			filter.AddString(row.sku)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
		)

		filters[idx] = filter
		return nil
	}
}

const upsertFeedProductSQL = `
INSERT INTO products (id, sku, name, description, price, stock_quantity, category_id)
VALUES ('sku-' || $1, $1, $2, $3, $4, $5, NULLIF($6, ''))
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    stock_quantity = EXCLUDED.stock_quantity,
    category_id = EXCLUDED.category_id,
    updated_at = now()`

// importFeed streams one feed and upserts its rows. Rows whose SKU appears in
// an earlier feed's filter are skipped, as are repeats within the feed itself.
func importFeed(ctx context.Context, pool *pgxpool.Pool, idx int, path string, filters []*bloom.BloomFilter) (uint64, error) {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var written, skipped uint64

	var streamErr error
	if err := streamGzFile(ctx, path, func(line string) {
		if streamErr != nil {
			return
		}
		row, ok := parseRow(line)
		if !ok {
			return
		}
		for j := range idx {
			if filters[j].TestString(row.sku) {
				skipped++
				return
			}
		}
		if seen.TestString(row.sku) {
			skipped++
			return
		}
		seen.AddString(row.sku)

		if _, err := pool.Exec(ctx, upsertFeedProductSQL,
			row.sku, row.name, row.description, row.price, row.stock, row.categoryID,
		); err != nil {
			streamErr = errors.Wrapf(err, "upsert product %s", row.sku)
			return
		}
		written++
		if written%progressEvery == 0 {
			slog.Info("pass 2 progress",
				slog.Int("file", idx+1),
				slog.Uint64("written", written),
			)
		}
	}); err != nil {
		return written, errors.Wrapf(err, "scan file %d", idx+1)
	}
	if streamErr != nil {
		return written, streamErr
	}

	slog.Info("pass 2 complete",
		slog.Int("file", idx+1),
		slog.Uint64("written", written),
		slog.Uint64("skipped", skipped),
	)

	return written, nil
}

// parseRow parses one TSV feed line. Malformed lines are dropped.
func parseRow(line string) (feedRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != feedFields {
		return feedRow{}, false
	}

	sku := strings.TrimSpace(fields[0])
	name := strings.TrimSpace(fields[1])
	if sku == "" || name == "" {
		return feedRow{}, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(fields[3]))
	if err != nil || price.IsNegative() {
		return feedRow{}, false
	}

	stock, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil || stock < 0 {
		return feedRow{}, false
	}

	return feedRow{
		sku:         sku,
		name:        name,
		description: strings.TrimSpace(fields[2]),
		price:       price,
		stock:       stock,
		categoryID:  strings.TrimSpace(fields[5]),
	}, true
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
