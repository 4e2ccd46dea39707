package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"vehicle-rental-desk/internal/domain"
	"vehicle-rental-desk/internal/logger"
	"vehicle-rental-desk/internal/service"
)

const DefaultSheet = "Fleet"

var requiredColumns = []string{"id", "type", "brand", "model", "priceperday"}

// VehicleAdder is the slice of the booking engine the importer needs.
type VehicleAdder interface {
	AddVehicle(ctx context.Context, v *domain.Vehicle) error
}

// ImportOptions defines the configuration for a fleet import
type ImportOptions struct {
	Sheet     string // default "Fleet"
	DryRun    bool
	MaxErrors int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportSummary contains the import statistics
type ImportSummary struct {
	Inserted   int        `json:"inserted"`
	Duplicates int        `json:"duplicates"`
	Invalid    int        `json:"invalid"`
	Errors     []RowError `json:"error_samples,omitempty"`
	DryRun     bool       `json:"dry_run"`
}

// ImportFleet reads the fleet sheet of an xlsx workbook and adds every row through the
// booking engine. Rows are 1-based in error reports, the header being row 1.
func ImportFleet(ctx context.Context, engine VehicleAdder, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{DryRun: opts.DryRun}
	if opts.Sheet == "" {
		opts.Sheet = DefaultSheet
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}
	sheet, ok := file.Sheet[opts.Sheet]
	if !ok {
		return summary, fmt.Errorf("sheet %q not found", opts.Sheet)
	}
	if sheet.MaxRow == 0 {
		return summary, nil
	}

	columns, err := readHeader(sheet)
	if err != nil {
		return summary, err
	}

	seen := make(map[string]bool)
	for row := 1; row < sheet.MaxRow; row++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		values := readRow(sheet, row, columns)
		if isBlank(values) {
			continue
		}

		v, err := parseVehicle(values)
		if err != nil {
			summary.Invalid++
			summary.addError(row+1, err.Error(), opts.MaxErrors)
			continue
		}

		key := strings.ToLower(v.ID)
		if opts.DryRun {
			if seen[key] {
				summary.Duplicates++
				summary.addError(row+1, "duplicate vehicle id "+v.ID, opts.MaxErrors)
				continue
			}
			seen[key] = true
			summary.Inserted++
			continue
		}

		switch err := engine.AddVehicle(ctx, v); {
		case err == nil:
			summary.Inserted++
		case errors.Is(err, service.ErrDuplicateVehicle):
			summary.Duplicates++
			summary.addError(row+1, "duplicate vehicle id "+v.ID, opts.MaxErrors)
		default:
			summary.Invalid++
			summary.addError(row+1, err.Error(), opts.MaxErrors)
		}
	}

	logger.Info("Fleet import finished", "sheet", opts.Sheet, "inserted", summary.Inserted, "duplicates", summary.Duplicates, "invalid", summary.Invalid, "dry_run", opts.DryRun)
	return summary, nil
}

func (s *ImportSummary) addError(row int, msg string, max int) {
	if len(s.Errors) < max {
		s.Errors = append(s.Errors, RowError{Row: row, Message: msg})
	}
}

// readHeader maps normalized header names to column indexes.
func readHeader(sheet *xlsx.Sheet) (map[string]int, error) {
	columns := make(map[string]int)
	for col := 0; col < sheet.MaxCol; col++ {
		cell, err := sheet.Cell(0, col)
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		name := normalize(cell.String())
		if name != "" {
			columns[name] = col
		}
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return columns, nil
}

func readRow(sheet *xlsx.Sheet, row int, columns map[string]int) map[string]string {
	values := make(map[string]string, len(columns))
	for name, col := range columns {
		cell, err := sheet.Cell(row, col)
		if err != nil {
			continue
		}
		values[name] = strings.TrimSpace(cell.String())
	}
	return values
}

func parseVehicle(values map[string]string) (*domain.Vehicle, error) {
	if values["id"] == "" {
		return nil, errors.New("missing vehicle id")
	}
	kind, err := domain.ParseVehicleKind(values["type"])
	if err != nil {
		return nil, err
	}
	cents, err := ParseCents(values["priceperday"])
	if err != nil {
		return nil, err
	}
	return domain.NewVehicle(values["id"], kind, values["brand"], values["model"], cents), nil
}

// ParseCents converts a decimal amount such as "45.5" into cents.
func ParseCents(s string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	cents := math.Round(f * 100)
	if cents >= math.MaxInt64 {
		return 0, fmt.Errorf("price %q out of range", s)
	}
	return int64(cents), nil
}

func normalize(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func isBlank(values map[string]string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
