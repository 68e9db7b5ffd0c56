package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// Result is what one document contributes to a run.
type Result struct {
	Records []pulse.Record

	// Dropped holds one pulse.ErrRecordCoercion error per discarded entry.
	Dropped []error

	// Sparse counts top-N entries discarded for lacking a region identifier.
	Sparse int

	// Skipped explains why a well-formed document contributed no records.
	Skipped string
}

// Extractor decodes the documents of one category.
type Extractor interface {
	Category() pulse.Category

	// Extract builds the records of doc. at carries the normalized region
	// and the year and quarter taken from the document's path.
	Extract(ctx context.Context, doc any, at pulse.Coordinate) (Result, error)
}

type variant struct {
	category pulse.Category
	extract  func(ctx context.Context, doc any, at pulse.Coordinate) (Result, error)
}

func (v variant) Category() pulse.Category { return v.category }

func (v variant) Extract(ctx context.Context, doc any, at pulse.Coordinate) (Result, error) {
	return v.extract(ctx, doc, at)
}

var variants = map[pulse.Category]Extractor{
	pulse.CategoryAggregatedTransaction: variant{pulse.CategoryAggregatedTransaction, aggregatedTransaction},
	pulse.CategoryAggregatedUser:        variant{pulse.CategoryAggregatedUser, aggregatedUser},
	pulse.CategoryAggregatedInsurance:   variant{pulse.CategoryAggregatedInsurance, aggregatedInsurance},
	pulse.CategoryMapTransaction:        variant{pulse.CategoryMapTransaction, mapTransaction},
	pulse.CategoryMapUser:               variant{pulse.CategoryMapUser, mapUser},
	pulse.CategoryMapInsurance:          variant{pulse.CategoryMapInsurance, mapInsurance},
	pulse.CategoryTopTransaction:        variant{pulse.CategoryTopTransaction, topTransaction},
	pulse.CategoryTopUser:               variant{pulse.CategoryTopUser, topUser},
}

// For returns the extractor of a category.
func For(c pulse.Category) (Extractor, error) {
	e, ok := variants[c]
	if !ok {
		return nil, fmt.Errorf("%q: %w", c, pulse.ErrUnknownCategory)
	}
	return e, nil
}

// Decode parses a document, keeping numbers as json.Number so amounts stay exact.
func Decode(content []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %v: %w", err, pulse.ErrExtraction)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("malformed JSON: trailing data after document: %w", pulse.ErrExtraction)
	}
	return doc, nil
}

var builder = gval.Full(jsonpath.PlaceholderExtension())

var (
	pathData            = mustPath("$.data")
	pathTransactionData = mustPath("$.data.transactionData")
	pathAggregated      = mustPath("$.data.aggregated")
	pathUsersByDevice   = mustPath("$.data.usersByDevice")
	pathHoverDataList   = mustPath("$.data.hoverDataList")
	pathHoverData       = mustPath("$.data.hoverData")
	pathPincodes        = mustPath("$.data.pincodes")
)

type path struct {
	expr gval.Evaluable
	name string
}

func mustPath(p string) path {
	expr, err := builder.NewEvaluable(p)
	if err != nil {
		panic(fmt.Sprintf("invalid JSONPath %s: %v", p, err))
	}
	return path{expr: expr, name: strings.TrimPrefix(p, "$.")}
}

// lookup evaluates p against doc. present is false when a key on the path
// does not exist; a key holding null is present with a nil value.
func lookup(ctx context.Context, doc any, p path) (value any, present bool, err error) {
	value, err = p.expr(ctx, doc)
	if err != nil {
		msg := err.Error()
		if strings.HasPrefix(msg, "unknown key") || strings.HasPrefix(msg, "unknown parameter") {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %v: %w", p.name, err, pulse.ErrExtraction)
	}
	return value, true, nil
}

// requireData fails documents without a "data" object.
func requireData(ctx context.Context, doc any) error {
	data, present, err := lookup(ctx, doc, pathData)
	if err != nil {
		return err
	}
	if _, ok := data.(map[string]any); !present || !ok {
		return fmt.Errorf("data object is missing: %w", pulse.ErrExtraction)
	}
	return nil
}

// requireList locates a list-valued sub-key. A null value yields a nil
// list with ok false; an absent key or a non-list value is an error.
func requireList(ctx context.Context, doc any, p path) (list []any, ok bool, err error) {
	if err := requireData(ctx, doc); err != nil {
		return nil, false, err
	}
	value, present, err := lookup(ctx, doc, p)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, false, fmt.Errorf("%s is missing: %w", p.name, pulse.ErrExtraction)
	}
	if value == nil {
		return nil, false, nil
	}
	list, isList := value.([]any)
	if !isList {
		return nil, false, fmt.Errorf("%s: expected list, got %T: %w", p.name, value, pulse.ErrExtraction)
	}
	return list, true, nil
}

func object(field string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %T: %w", field, v, pulse.ErrRecordCoercion)
	}
	return m, nil
}

func entryError(field string, index int, err error) error {
	return fmt.Errorf("%s[%d]: %w", field, index, err)
}
