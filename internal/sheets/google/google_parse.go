package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sothuchi/internal/core"
)

// Ledger row layout, one transaction per row:
//
//	A date (YYYY-MM-DD)   B category      C note          D amount
//	E type                F receiptLink   G timestamp     H subCategory
//	I quantity            J paymentMethod K fuelLiters    L id
const (
	colDate = iota
	colCategory
	colNote
	colAmount
	colType
	colReceiptLink
	colTimestamp
	colSubCategory
	colQuantity
	colPaymentMethod
	colFuelLiters
	colID
)

// transactionToRow renders the row written to the ledger sheet.
func transactionToRow(tx core.Transaction) []any {
	return []any{
		tx.Date.Format("2006-01-02"),
		tx.Category,
		tx.Note,
		tx.Amount.Dong,
		string(tx.Type),
		tx.ReceiptLink,
		tx.Timestamp.Format(time.RFC3339),
		tx.SubCategory,
		formatOptionalFloat(tx.Quantity),
		tx.PaymentMethod,
		formatOptionalFloat(tx.FuelLiters),
		tx.ID,
	}
}

// parseTransactions maps raw sheet values into transactions, keeping only
// rows inside the month window. Rows missing a parsable date, amount, or
// type count as skipped; rows outside the window are simply ignored.
func parseTransactions(values [][]any, year, month int) ([]core.Transaction, int) {
	var out []core.Transaction
	skipped := 0
	for i, row := range values {
		cols := toStrings(row)
		tx, ok := parseRow(cols)
		if !ok {
			// The header row is not a malformed record.
			if i == 0 && looksLikeHeader(cols) {
				continue
			}
			if isEmptyRow(cols) {
				continue
			}
			skipped++
			continue
		}
		if !tx.Date.In(year, month) {
			continue
		}
		out = append(out, tx)
	}
	return out, skipped
}

// parseRow maps one positional row into a Transaction. Returns ok=false when
// a required field (date, amount, type) is missing or unparsable.
func parseRow(cols []string) (core.Transaction, bool) {
	date, err := core.ParseDate(cell(cols, colDate))
	if err != nil {
		return core.Transaction{}, false
	}
	dong, ok := core.ParseCellToDong(cell(cols, colAmount))
	if !ok {
		return core.Transaction{}, false
	}
	typ, ok := core.ParseTxType(cell(cols, colType))
	if !ok {
		return core.Transaction{}, false
	}

	tx := core.Transaction{
		ID:            cell(cols, colID),
		Date:          date,
		Category:      cell(cols, colCategory),
		SubCategory:   cell(cols, colSubCategory),
		Amount:        core.Money{Dong: dong},
		Type:          typ,
		ReceiptLink:   cell(cols, colReceiptLink),
		PaymentMethod: cell(cols, colPaymentMethod),
		Note:          cell(cols, colNote),
	}
	if ts, err := time.Parse(time.RFC3339, cell(cols, colTimestamp)); err == nil {
		tx.Timestamp = ts
	}
	if q, err := strconv.ParseFloat(cell(cols, colQuantity), 64); err == nil {
		tx.Quantity = q
	}
	if l, err := parseFloatCell(cell(cols, colFuelLiters)); err == nil {
		tx.FuelLiters = l
	}
	return tx, true
}

func cell(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

func isEmptyRow(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func looksLikeHeader(cols []string) bool {
	if len(cols) == 0 {
		return false
	}
	_, err := core.ParseDate(cols[0])
	return err != nil
}

// parseFloatCell accepts a decimal comma, which spreadsheet locales produce.
func parseFloatCell(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func formatOptionalFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%g", f)
}
