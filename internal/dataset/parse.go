package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tienda-dashboard/internal/models"
)

const DateLayout = "01/02/2006"

const (
	ColumnOrderValue = "order_value_eur"
	ColumnCost       = "cost"
	ColumnDate       = "date"
	ColumnDevice     = "device_type"
	ColumnCategory   = "category"
	ColumnCountry    = "country"
)

var requiredColumns = []string{
	ColumnOrderValue,
	ColumnCost,
	ColumnDate,
	ColumnDevice,
	ColumnCategory,
	ColumnCountry,
}

var (
	ErrEmpty         = errors.New("dataset is empty")
	ErrMissingColumn = errors.New("missing required column")
)

// ParseError pinpoints the cell that made a load fail.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %q: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads the order CSV and returns the normalised dataset. Any malformed
// amount or date fails the whole load.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		record, err := parseRow(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrEmpty
	}

	return New(records), nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int, line int) (models.Record, error) {
	cell := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	orderValue, err := ParseAmount(cell(ColumnOrderValue))
	if err != nil {
		return models.Record{}, &ParseError{Line: line, Column: ColumnOrderValue, Value: cell(ColumnOrderValue), Err: err}
	}

	cost, err := ParseAmount(cell(ColumnCost))
	if err != nil {
		return models.Record{}, &ParseError{Line: line, Column: ColumnCost, Value: cell(ColumnCost), Err: err}
	}

	date, err := time.Parse(DateLayout, cell(ColumnDate))
	if err != nil {
		return models.Record{}, &ParseError{Line: line, Column: ColumnDate, Value: cell(ColumnDate), Err: err}
	}

	return models.Record{
		OrderValue: orderValue,
		Cost:       cost,
		Date:       date,
		DeviceType: cell(ColumnDevice),
		Category:   cell(ColumnCategory),
		Country:    cell(ColumnCountry),
	}, nil
}

// ParseAmount parses a decimal amount that may carry comma thousands
// separators, e.g. "1,234.56".
func ParseAmount(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty amount")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
