package extract

import (
	"context"
	"fmt"

	"github.com/vvka-141/pulseload/internal/normalize"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// walkInstruments visits every (item, instrument) pair of data.transactionData.
func walkInstruments(ctx context.Context, doc any, fn func(name any, field string, instrument map[string]any) error) (Result, error) {
	items, ok, err := requireList(ctx, doc, pathTransactionData)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Skipped: "transactionData is null"}, nil
	}

	var res Result
	for i, raw := range items {
		field := fmt.Sprintf("transactionData[%d]", i)
		item, err := object(field, raw)
		if err != nil {
			res.Dropped = append(res.Dropped, err)
			continue
		}
		instruments, isList := item["paymentInstruments"].([]any)
		if !isList {
			res.Dropped = append(res.Dropped, fmt.Errorf("%s.paymentInstruments: expected list, got %T: %w",
				field, item["paymentInstruments"], pulse.ErrRecordCoercion))
			continue
		}
		for j, rawInstrument := range instruments {
			instrumentField := fmt.Sprintf("%s.paymentInstruments[%d]", field, j)
			instrument, err := object(instrumentField, rawInstrument)
			if err == nil {
				err = fn(item["name"], instrumentField, instrument)
			}
			if err != nil {
				res.Dropped = append(res.Dropped, err)
			}
		}
	}
	return res, nil
}

func aggregatedTransaction(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	var records []pulse.Record
	res, err := walkInstruments(ctx, doc, func(name any, field string, instrument map[string]any) error {
		txType, err := normalize.Name(field+".name", name)
		if err != nil {
			return err
		}
		count, err := normalize.Count(field+".count", instrument["count"])
		if err != nil {
			return err
		}
		amount, err := normalize.Amount(field+".amount", instrument["amount"])
		if err != nil {
			return err
		}
		records = append(records, pulse.AggregatedTransaction{At: at, TransactionType: txType, Count: count, Amount: amount})
		return nil
	})
	res.Records = records
	return res, err
}

func aggregatedInsurance(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	var records []pulse.Record
	ordinal := 0
	res, err := walkInstruments(ctx, doc, func(_ any, field string, instrument map[string]any) error {
		ordinal++
		count, err := normalize.Count(field+".count", instrument["count"])
		if err != nil {
			return err
		}
		amount, err := normalize.Amount(field+".amount", instrument["amount"])
		if err != nil {
			return err
		}
		records = append(records, pulse.AggregatedInsurance{At: at, Instrument: ordinal, Count: count, Amount: amount})
		return nil
	})
	res.Records = records
	return res, err
}

func aggregatedUser(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	if err := requireData(ctx, doc); err != nil {
		return Result{}, err
	}
	devices, _, err := lookup(ctx, doc, pathUsersByDevice)
	if err != nil {
		return Result{}, err
	}
	list, isList := devices.([]any)
	if !isList || len(list) == 0 {
		return Result{Skipped: "no usersByDevice data"}, nil
	}

	// The aggregated block is broadcast to every device entry.
	aggregated, _, err := lookup(ctx, doc, pathAggregated)
	if err != nil {
		return Result{}, err
	}
	totals, _ := aggregated.(map[string]any)
	registered, err := normalize.CountOrZero("aggregated.registeredUsers", totals["registeredUsers"])
	if err != nil {
		return Result{}, fmt.Errorf("%v: %w", err, pulse.ErrExtraction)
	}
	opens, err := normalize.CountOrZero("aggregated.appOpens", totals["appOpens"])
	if err != nil {
		return Result{}, fmt.Errorf("%v: %w", err, pulse.ErrExtraction)
	}

	var res Result
	for i, raw := range list {
		rec, err := aggregatedUserEntry(raw, at, registered, opens)
		if err != nil {
			res.Dropped = append(res.Dropped, entryError("usersByDevice", i, err))
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func aggregatedUserEntry(raw any, at pulse.Coordinate, registered, opens int64) (pulse.Record, error) {
	device, err := object("device", raw)
	if err != nil {
		return nil, err
	}
	brand, err := normalize.Name("brand", device["brand"])
	if err != nil {
		return nil, err
	}
	count, err := normalize.CountOrZero("count", device["count"])
	if err != nil {
		return nil, err
	}
	percentage, err := normalize.PercentageOrZero("percentage", device["percentage"])
	if err != nil {
		return nil, err
	}
	return pulse.AggregatedUser{
		At:              at,
		RegisteredUsers: registered,
		AppOpens:        opens,
		Brand:           brand,
		DeviceCount:     count,
		Percentage:      percentage,
	}, nil
}
