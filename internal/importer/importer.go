package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"quotation-crm/internal/domain"
	"quotation-crm/internal/service/customer"
)

// CustomerCreator stores one validated customer. *customer.Service satisfies it.
type CustomerCreator interface {
	Create(ctx context.Context, in customer.Input) (*domain.Customer, error)
}

// IDSource issues ids for rows that have none.
type IDSource interface {
	Next() string
}

// Result counts what a run did.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads customer CSV exports and creates one record per row.
// The header row names the input fields (id, company_name, ...); case is ignored.
type CSVImporter struct {
	reader  *csv.Reader
	creator CustomerCreator
	ids     IDSource
	logger  *zap.Logger
}

func NewCSVImporter(r io.Reader, creator CustomerCreator, ids IDSource, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:  csvr,
		creator: creator,
		ids:     ids,
		logger:  logger.Named("importer"),
	}
}

// Run creates a customer per row. Rows whose id already exists are skipped;
// any other failure stops the run and names the line.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["company_name"]; !ok {
		return res, errors.New("read headers: company_name column is required")
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		in, ok := parseRow(record, index)
		if !ok {
			continue
		}
		if in.ID == "" {
			in.ID = i.ids.Next()
		}

		_, err = i.creator.Create(ctx, in)
		switch {
		case err == nil:
			res.Imported++
		case domain.KindOf(err) == domain.KindConflict:
			res.Skipped++
			i.logger.Info("skipping existing customer", zap.Int("line", line), zap.String("id", in.ID))
		default:
			return res, fmt.Errorf("line %d (id %q): %w", line, in.ID, err)
		}
	}
	return res, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

// parseRow maps a record onto Input. Blank rows report false.
func parseRow(record []string, index map[string]int) (customer.Input, bool) {
	in := customer.Input{
		ID:            pick(record, index, "id"),
		CompanyName:   pick(record, index, "company_name"),
		ContactPerson: pick(record, index, "contact_person"),
		Phone:         pick(record, index, "phone"),
		Email:         pick(record, index, "email"),
		QuotationID:   pick(record, index, "quotation_id"),
		QuotationReg:  pick(record, index, "quotation_reg"),
		QuotationExp:  pick(record, index, "quotation_exp"),
		TotalAmount:   customer.Number(pick(record, index, "total_amount")),
		Status:        customer.Number(pick(record, index, "status")),
		Address:       pick(record, index, "address"),
		City:          pick(record, index, "city"),
		State:         pick(record, index, "state"),
	}
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return in, true
		}
	}
	return in, false
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
