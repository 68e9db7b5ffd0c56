package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vvka-141/pulseload/internal/normalize"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// pincodes visits the entries of data.pincodes that carry a region
// identifier under idField; the others are counted as sparse.
func pincodes(ctx context.Context, doc any, idField string, build func(pincode string, entry map[string]any) (pulse.Record, error)) (Result, error) {
	list, ok, err := requireList(ctx, doc, pathPincodes)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Skipped: "pincodes is null"}, nil
	}

	var res Result
	for i, raw := range list {
		entry, err := object("entry", raw)
		if err != nil {
			res.Dropped = append(res.Dropped, entryError("pincodes", i, err))
			continue
		}
		id := identifier(entry[idField])
		if id == "" {
			res.Sparse++
			continue
		}
		rec, err := build(normalize.Title(id), entry)
		if err != nil {
			res.Dropped = append(res.Dropped, entryError("pincodes", i, err))
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// identifier accepts pincodes written as strings or bare numbers.
func identifier(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

func topTransaction(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	return pincodes(ctx, doc, "entityName", func(pincode string, entry map[string]any) (pulse.Record, error) {
		metric, err := object("metric", entry["metric"])
		if err != nil {
			return nil, err
		}
		count, err := normalize.Count("metric.count", metric["count"])
		if err != nil {
			return nil, err
		}
		amount, err := normalize.Amount("metric.amount", metric["amount"])
		if err != nil {
			return nil, err
		}
		return pulse.TopTransaction{At: at, Pincode: pincode, Count: count, Amount: amount}, nil
	})
}

func topUser(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	return pincodes(ctx, doc, "name", func(pincode string, entry map[string]any) (pulse.Record, error) {
		registered, err := normalize.CountOrZero("registeredUsers", entry["registeredUsers"])
		if err != nil {
			return nil, err
		}
		return pulse.TopUser{At: at, Pincode: pincode, RegisteredUsers: registered}, nil
	})
}
