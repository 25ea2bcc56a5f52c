// Command stockroom-import loads products from a CSV export of the product
// spreadsheet. Columns: quantity, name, price; the first row is a header.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockroom/internal/config"
	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

func main() {
	cfg := config.Load()
	dsn := flag.String("dsn", cfg.DBDSN, "sqlite DSN")
	shopID := flag.Int64("shop", 1, "shop id that receives the products")
	categoryID := flag.Int64("category", 0, "category id for new products (0 = none)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: stockroom-import [-dsn file] [-shop id] [-category id] products.csv")
		os.Exit(2)
	}

	zl, err := applog.Init(cfg.LogLevel, "")
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		zl.Fatal("File not found!", zap.String("path", flag.Arg(0)), zap.Error(err))
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		zl.Fatal("read csv", zap.Error(err))
	}

	db, err := repos.OpenDB(*dsn, false)
	if err != nil {
		zl.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	shop, err := repos.NewShopRepo(db).Get(ctx, *shopID)
	if err != nil {
		zl.Fatal("load shop", zap.Error(err))
	}

	clock := services.SystemClock{}
	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db),
		services.NewAuditService(repos.NewAuditRepo(db), clock), clock)

	var cat *int64
	if *categoryID > 0 {
		cat = categoryID
	}
	n, err := catalog.ImportProducts(ctx, domain.Actor{ShopID: shop.ID, ShopName: shop.Name, IP: "cli"}, cat, rows)
	if err != nil {
		zl.Fatal("import", zap.Int("created", n), zap.Error(err))
	}
	zl.Info("import done", zap.Int("created", n), zap.Int("rows", len(rows)), zap.String("shop", shop.Name))
}

// readRows skips the header and blank names.
func readRows(r io.Reader) ([]services.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []services.ImportRow
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue
		}
		name := strings.TrimSpace(rec[1])
		if name == "" {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: quantity: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: price: %w", line, err)
		}
		out = append(out, services.ImportRow{Quantity: qty, Name: name, Price: price.Round(2)})
	}
}
