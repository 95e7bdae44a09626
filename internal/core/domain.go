package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// CarCategory is the category name used by the vehicle operating-cost ledger.
const CarCategory = "Ô tô"

type (
	// TxType discriminates whether an amount adds to or subtracts from the balance.
	TxType string

	Date struct {
		time.Time
	}

	// Money is an amount in Vietnamese đồng. Amounts are always non-negative;
	// direction is carried by TxType, never by a negative value.
	Money struct {
		Dong int64
	}

	// Transaction is a single ledger record as parsed from a spreadsheet row
	// or submitted through the API.
	Transaction struct {
		ID          string
		Date        Date
		Category    string
		SubCategory string
		Amount      Money
		Type        TxType
		ReceiptLink string
		Timestamp   time.Time

		// Pass-through metadata, unused in aggregation math.
		Quantity      float64
		PaymentMethod string
		Note          string
		FuelLiters    float64
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyCategory = errors.New("empty category")
)

// Valid reports whether the type is one of the two closed variants.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTxType maps a raw cell value to a TxType, tolerating case and spacing.
func ParseTxType(s string) (TxType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "thu":
		return Income, true
	case "expense", "chi":
		return Expense, true
	}
	return "", false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD cell value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// In reports whether the date falls inside the given month/year window.
func (d Date) In(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

func (m Money) Validate() error {
	if m.Dong <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a transaction at the boundary where it enters the system.
// Rows fetched back from the remote store go through best-effort parsing
// instead; this strict form applies to records created through the API.
func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if len(tx.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return tx.Amount.Validate()
}
