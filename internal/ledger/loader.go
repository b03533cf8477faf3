// Package ledger turns raw tabular input into a validated models.Ledger.
//
// Malformed rows are dropped rather than failing the whole load. Every dropped
// row is counted in LoadReport so callers can surface data-quality issues.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Required column headers
const (
	ColDate        = "Date"
	ColDescription = "Description"
	ColAmount      = "Amount"
	ColType        = "Type"
	ColStatus      = "Status"
)

var requiredColumns = []string{ColDate, ColDescription, ColAmount, ColType, ColStatus}

// Drop reasons reported in LoadReport.Dropped
const (
	DropMissingField = "missing_field"
	DropBadDate      = "bad_date"
	DropBadAmount    = "bad_amount"
	DropBadType      = "bad_type"
	DropBadStatus    = "bad_status"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptyLedger    = errors.New("no valid transactions")
	ErrUnreadable     = errors.New("unreadable input")
)

// LoadError is returned when the input cannot produce a ledger at all
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("load ledger: %v", e.Err)
	}
	return fmt.Sprintf("load ledger: %v: %s", e.Err, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadReport describes what happened to the input rows
type LoadReport struct {
	Rows           int            `json:"rows"`
	Kept           int            `json:"kept"`
	Dropped        map[string]int `json:"dropped"`
	SignMismatches int            `json:"sign_mismatches"`
}

// DroppedTotal sums all drop reasons
func (r LoadReport) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

var thousandsPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// Amount bounds: decimal exponent within ±maxAmountScale, at most maxAmountDigits digits
const (
	maxAmountScale  = 18
	maxAmountDigits = 30
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"January 2 2006",
}

// Load reads a CSV document with a header row and returns the cleaned ledger.
// The reader is consumed to EOF; closing it is left to the caller.
func Load(r io.Reader) (*models.Ledger, LoadReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, LoadReport{}, &LoadError{Err: fmt.Errorf("%w: %w", ErrUnreadable, err)}
	}
	if len(records) == 0 {
		return nil, LoadReport{}, &LoadError{Reason: "no header row", Err: ErrMissingColumns}
	}
	return LoadRows(records[0], records[1:])
}

// LoadRows applies the cleaning pipeline to an in-memory table
func LoadRows(header []string, rows [][]string) (*models.Ledger, LoadReport, error) {
	report := LoadReport{Rows: len(rows), Dropped: map[string]int{}}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, report, err
	}

	txs := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, reason := parseRow(row, idx)
		if reason != "" {
			report.Dropped[reason]++
			continue
		}
		if !tx.SignMatchesType() {
			report.SignMismatches++
		}
		txs = append(txs, tx)
	}
	report.Kept = len(txs)

	if len(txs) == 0 {
		return nil, report, &LoadError{
			Reason: fmt.Sprintf("%d rows read, all dropped", report.Rows),
			Err:    ErrEmptyLedger,
		}
	}
	return models.NewLedger(txs), report, nil
}

func columnIndex(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}

	idx := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i, ok := byName[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, &LoadError{Reason: strings.Join(missing, ", "), Err: ErrMissingColumns}
	}
	return idx, nil
}

// parseRow returns the transaction or the reason it was dropped
func parseRow(row []string, idx map[string]int) (models.Transaction, string) {
	field := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, col := range requiredColumns {
		if isMissing(field(col)) {
			return models.Transaction{}, DropMissingField
		}
	}

	date, ok := parseDate(field(ColDate))
	if !ok {
		return models.Transaction{}, DropBadDate
	}
	amount, err := parseAmount(field(ColAmount))
	if err != nil {
		return models.Transaction{}, DropBadAmount
	}
	typ, err := models.ParseTransactionType(field(ColType))
	if err != nil {
		return models.Transaction{}, DropBadType
	}
	status, err := models.ParseTransactionStatus(field(ColStatus))
	if err != nil {
		return models.Transaction{}, DropBadStatus
	}

	return models.Transaction{
		Date:        date,
		Description: field(ColDescription),
		Amount:      amount,
		Type:        typ,
		Status:      status,
	}, ""
}

func isMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "null", "na", "n/a":
		return true
	}
	return false
}

// parseDate returns the calendar date at UTC midnight
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseAmount accepts an optional leading "-" and "$", and commas only as
// thousands separators. Exponent and digit count are bounded.
func parseAmount(s string) (decimal.Decimal, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	if neg && strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("malformed amount %q", s)
	}
	if strings.Contains(s, ",") {
		if !thousandsPattern.MatchString(s) {
			return decimal.Zero, fmt.Errorf("malformed amount %q", s)
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp < -maxAmountScale || exp > maxAmountScale || d.NumDigits() > maxAmountDigits {
		return decimal.Zero, fmt.Errorf("amount %q out of range", s)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
