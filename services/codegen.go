package services

import (
	"context"
	"fmt"
	"strconv"

	"Gin_postgres_redis_asset_tool/cache"
	"Gin_postgres_redis_asset_tool/metrics"
)

const codeDigits = 6

// CodeScanner lists every asset code ever issued under a prefix.
type CodeScanner interface {
	AssetCodesWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// CodeGenerator issues asset codes: prefix + zero-padded per-prefix counter.
// The counter lives in the cache and holds the last number issued.
type CodeGenerator struct {
	scan CodeScanner
	gw   cache.Gateway
}

func NewCodeGenerator(scan CodeScanner, gw cache.Gateway) *CodeGenerator {
	return &CodeGenerator{scan: scan, gw: gw}
}

func seqKey(prefix string) string { return "asset:seq:" + prefix }

func FormatCode(prefix string, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, codeDigits, n)
}

// Next returns the next code for prefix. A warm counter is advanced with
// INCR; a missing or unreadable one is rebuilt by reseedFromScan first.
func (g *CodeGenerator) Next(ctx context.Context, prefix string) (string, error) {
	v, ok, err := g.gw.GetString(ctx, seqKey(prefix))
	if err != nil {
		return "", fmt.Errorf("read sequence %s: %w", prefix, err)
	}
	source := "cache"
	if _, perr := strconv.ParseInt(v, 10, 64); !ok || perr != nil {
		if err := g.reseedFromScan(ctx, prefix, ok); err != nil {
			return "", err
		}
		source = "reseed"
	}
	n, err := g.gw.Incr(ctx, seqKey(prefix))
	if err != nil {
		return "", fmt.Errorf("advance sequence %s: %w", prefix, err)
	}
	metrics.RecordAssetCode(source)
	return FormatCode(prefix, n), nil
}

// reseedFromScan is the cold-cache recovery: the counter is set to the
// highest numeric suffix among existing codes (0 when none parse). A
// missing key is seeded with SET NX so concurrent reseeds agree on one
// value; a corrupt key is overwritten.
func (g *CodeGenerator) reseedFromScan(ctx context.Context, prefix string, overwrite bool) error {
	max, err := g.maxIssued(ctx, prefix)
	if err != nil {
		return err
	}
	val := strconv.FormatInt(max, 10)
	if overwrite {
		err = g.gw.SetString(ctx, seqKey(prefix), val)
	} else {
		_, err = g.gw.SetStringNX(ctx, seqKey(prefix), val)
	}
	if err != nil {
		return fmt.Errorf("seed sequence %s: %w", prefix, err)
	}
	return nil
}

// Resync forces the counter up to the highest issued code. Used after an
// insert hit a duplicate code, meaning the cache fell behind the table.
func (g *CodeGenerator) Resync(ctx context.Context, prefix string) error {
	return g.reseedFromScan(ctx, prefix, true)
}

func (g *CodeGenerator) maxIssued(ctx context.Context, prefix string) (int64, error) {
	codes, err := g.scan.AssetCodesWithPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("scan codes %s: %w", prefix, err)
	}
	var max int64
	for _, c := range codes {
		if len(c) <= len(prefix) {
			continue
		}
		n, err := strconv.ParseInt(c[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}
