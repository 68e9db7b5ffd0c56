package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vvka-141/pulseload/internal/normalize"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// hoverList locates data.hoverDataList, rejecting documents that carry the
// district mapping used by map-user instead.
func hoverList(ctx context.Context, doc any) ([]any, bool, error) {
	if err := requireData(ctx, doc); err != nil {
		return nil, false, err
	}
	if _, present, err := lookup(ctx, doc, pathHoverDataList); err == nil && !present {
		if _, other, _ := lookup(ctx, doc, pathHoverData); other {
			return nil, false, fmt.Errorf("found hoverData where hoverDataList was expected: %w: %w",
				pulse.ErrShapeMismatch, pulse.ErrExtraction)
		}
	}
	return requireList(ctx, doc, pathHoverDataList)
}

// districtMetric reads one {name, metric:[{count, amount}]} entry.
// Only the first metric is used.
func districtMetric(raw any) (string, int64, decimal.Decimal, error) {
	entry, err := object("entry", raw)
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	district, err := normalize.Name("name", entry["name"])
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	metrics, ok := entry["metric"].([]any)
	if !ok || len(metrics) == 0 {
		return "", 0, decimal.Zero, fmt.Errorf("metric: expected non-empty list, got %T: %w", entry["metric"], pulse.ErrRecordCoercion)
	}
	metric, err := object("metric[0]", metrics[0])
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	count, err := normalize.Count("metric[0].count", metric["count"])
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	amount, err := normalize.Amount("metric[0].amount", metric["amount"])
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	return district, count, amount, nil
}

func mapTransaction(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	return districtMetrics(ctx, doc, func(district string, count int64, amount decimal.Decimal) pulse.Record {
		return pulse.MapTransaction{At: at, District: district, Count: count, Amount: amount}
	})
}

func mapInsurance(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	return districtMetrics(ctx, doc, func(district string, count int64, amount decimal.Decimal) pulse.Record {
		return pulse.MapInsurance{At: at, District: district, Count: count, Amount: amount}
	})
}

func districtMetrics(ctx context.Context, doc any, build func(string, int64, decimal.Decimal) pulse.Record) (Result, error) {
	list, ok, err := hoverList(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Skipped: "hoverDataList is null"}, nil
	}

	var res Result
	for i, raw := range list {
		district, count, amount, err := districtMetric(raw)
		if err != nil {
			res.Dropped = append(res.Dropped, entryError("hoverDataList", i, err))
			continue
		}
		res.Records = append(res.Records, build(district, count, amount))
	}
	return res, nil
}

func mapUser(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	if err := requireData(ctx, doc); err != nil {
		return Result{}, err
	}
	value, present, err := lookup(ctx, doc, pathHoverData)
	if err != nil {
		return Result{}, err
	}
	if !present {
		if _, other, _ := lookup(ctx, doc, pathHoverDataList); other {
			return Result{}, fmt.Errorf("found hoverDataList where hoverData was expected: %w: %w",
				pulse.ErrShapeMismatch, pulse.ErrExtraction)
		}
		return Result{}, fmt.Errorf("%s is missing: %w", pathHoverData.name, pulse.ErrExtraction)
	}
	if value == nil {
		return Result{Skipped: "hoverData is null"}, nil
	}
	districts, ok := value.(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("%s: expected object, got %T: %w", pathHoverData.name, value, pulse.ErrExtraction)
	}

	names := make([]string, 0, len(districts))
	for name := range districts {
		names = append(names, name)
	}
	sort.Strings(names)

	var res Result
	for _, name := range names {
		rec, err := mapUserEntry(name, districts[name], at)
		if err != nil {
			res.Dropped = append(res.Dropped, fmt.Errorf("hoverData[%q]: %w", name, err))
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func mapUserEntry(name string, raw any, at pulse.Coordinate) (pulse.Record, error) {
	district, err := normalize.Name("district", name)
	if err != nil {
		return nil, err
	}
	stats, err := object("stats", raw)
	if err != nil {
		return nil, err
	}
	registered, err := normalize.CountOrZero("registeredUsers", stats["registeredUsers"])
	if err != nil {
		return nil, err
	}
	opens, err := normalize.CountOrZero("appOpens", stats["appOpens"])
	if err != nil {
		return nil, err
	}
	return pulse.MapUser{At: at, District: district, RegisteredUsers: registered, AppOpens: opens}, nil
}
