package plan

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/category"
	"github.com/psyvisions/foofind-web/internal/domain/search/filter"
)

// Size bucket bounds, as log2 of the byte size.
var (
	bucketOneMiB     = math.Log2(1 << 20)
	bucketTwoMiB     = math.Log2(2 << 20)
	bucketHundredMiB = math.Log2(100 << 20)
)

// typeCodes maps a pipe-separated category list to content-type codes.
// Unknown categories are reported and skipped.
func typeCodes(v string) ([]int64, []error) {
	var (
		codes  []int64
		issues []error
	)
	for _, name := range strings.Split(v, "|") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cs, ok := category.Codes(name)
		if !ok {
			issues = append(issues, domain.NewFilterError("type", name, "unknown category"))
			continue
		}
		for _, c := range cs {
			if !slices.Contains(codes, c) {
				codes = append(codes, c)
			}
		}
	}
	return codes, issues
}

// sizeRange parses a size bucket (1-4) or a "min,max" byte-size pair into a range over
// the log2 size attribute.
func sizeRange(v string) (filter.Range, error) {
	invalid := func(reason string) error { return domain.NewFilterError("size", v, reason) }

	if n, err := strconv.Atoi(v); err == nil {
		switch n {
		case 1:
			return filter.NewRangeFilter(nil, nil, filter.Float(bucketOneMiB), nil)
		case 2:
			return filter.NewRangeFilter(nil, filter.Float(bucketOneMiB), filter.Float(bucketTwoMiB), nil)
		case 3:
			return filter.NewRangeFilter(nil, filter.Float(bucketTwoMiB), filter.Float(bucketHundredMiB), nil)
		case 4:
			return filter.NewRangeFilter(nil, filter.Float(bucketHundredMiB), nil, nil)
		default:
			return filter.Range{}, invalid("bucket out of range 1-4")
		}
	}

	lo, hi, found := strings.Cut(v, ",")
	if !found {
		return filter.Range{}, invalid("expected a bucket or a min,max pair")
	}
	minBytes, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return filter.Range{}, invalid(fmt.Sprintf("min: %v", err))
	}
	maxBytes, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return filter.Range{}, invalid(fmt.Sprintf("max: %v", err))
	}
	switch {
	case math.IsNaN(minBytes) || math.IsNaN(maxBytes) || math.IsInf(minBytes, 0) || math.IsInf(maxBytes, 0):
		return filter.Range{}, invalid("not a finite number")
	case minBytes < 0 || maxBytes <= 0:
		return filter.Range{}, invalid("sizes must be positive")
	case minBytes > maxBytes:
		return filter.Range{}, invalid("min greater than max")
	}
	upper := filter.Float(math.Log2(maxBytes))
	if minBytes == 0 {
		return filter.NewRangeFilter(nil, nil, nil, upper)
	}
	return filter.NewRangeFilter(nil, filter.Float(math.Log2(minBytes)), nil, upper)
}
