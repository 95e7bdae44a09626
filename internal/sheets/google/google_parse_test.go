package google

import (
	"testing"

	"sothuchi/internal/core"
)

func row(cells ...any) []any { return cells }

func TestParseRow(t *testing.T) {
	cols := []string{
		"2024-05-03", "Ăn uống", "bữa trưa", "45000", "expense",
		"https://drive.example/r1", "2024-05-03T12:30:00Z", "Cơm văn phòng",
		"2", "cash", "", "tx-123",
	}
	tx, ok := parseRow(cols)
	if !ok {
		t.Fatal("expected row to parse")
	}
	if tx.ID != "tx-123" {
		t.Errorf("ID = %q", tx.ID)
	}
	if !tx.Date.In(2024, 5) || tx.Date.Day() != 3 {
		t.Errorf("unexpected date: %v", tx.Date)
	}
	if tx.Amount.Dong != 45000 {
		t.Errorf("Amount = %d", tx.Amount.Dong)
	}
	if tx.Type != core.Expense {
		t.Errorf("Type = %q", tx.Type)
	}
	if tx.Category != "Ăn uống" || tx.SubCategory != "Cơm văn phòng" {
		t.Errorf("categories: %q / %q", tx.Category, tx.SubCategory)
	}
	if tx.ReceiptLink != "https://drive.example/r1" {
		t.Errorf("ReceiptLink = %q", tx.ReceiptLink)
	}
	if tx.Quantity != 2 || tx.PaymentMethod != "cash" || tx.Note != "bữa trưa" {
		t.Errorf("metadata: %v %q %q", tx.Quantity, tx.PaymentMethod, tx.Note)
	}
}

func TestParseRowMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		cols []string
	}{
		{"no date", []string{"", "cat", "", "1000", "expense"}},
		{"bad date", []string{"03/05/2024", "cat", "", "1000", "expense"}},
		{"no amount", []string{"2024-05-03", "cat", "", "", "expense"}},
		{"bad amount", []string{"2024-05-03", "cat", "", "abc", "expense"}},
		{"no type", []string{"2024-05-03", "cat", "", "1000", ""}},
		{"unknown type", []string{"2024-05-03", "cat", "", "1000", "transfer"}},
		{"short row", []string{"2024-05-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseRow(tt.cols); ok {
				t.Error("expected parse failure")
			}
		})
	}
}

func TestParseRowFuelLiters(t *testing.T) {
	cols := []string{
		"2024-05-03", core.CarCategory, "đổ xăng", "900000", "expense",
		"", "", "", "", "", "30,5", "tx-9",
	}
	tx, ok := parseRow(cols)
	if !ok {
		t.Fatal("expected row to parse")
	}
	if tx.FuelLiters != 30.5 {
		t.Errorf("FuelLiters = %v, want 30.5 (decimal comma)", tx.FuelLiters)
	}
}

func TestParseTransactionsFiltersAndTallies(t *testing.T) {
	values := [][]any{
		row("Ngày", "Danh mục", "Ghi chú", "Số tiền", "Loại"), // header
		row("2024-05-01", "Lương", "", "1500000", "income"),
		row("2024-05-03", "Ăn uống", "", "45000", "expense"),
		row("2024-06-01", "Ăn uống", "", "99999", "expense"), // outside window
		row("2024-05-09", "Ăn uống", "", "not-a-number", "expense"),
		row("", "", "", "", ""), // blank row
	}

	txs, skipped := parseTransactions(values, 2024, 5)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if txs[0].Type != core.Income || txs[1].Amount.Dong != 45000 {
		t.Errorf("unexpected rows: %+v", txs)
	}
}

func TestTransactionToRowRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID:          "tx-7",
		Date:        core.NewDate(2024, 5, 3),
		Category:    "Ăn uống",
		SubCategory: "Cà phê",
		Amount:      core.Money{Dong: 65000},
		Type:        core.Expense,
		Note:        "họp nhóm",
	}

	cells := transactionToRow(tx)
	cols := toStrings(cells)
	parsed, ok := parseRow(cols)
	if !ok {
		t.Fatal("written row should parse back")
	}
	if parsed.ID != tx.ID || parsed.Amount != tx.Amount || parsed.Type != tx.Type ||
		parsed.Category != tx.Category || parsed.SubCategory != tx.SubCategory {
		t.Errorf("round trip mismatch: %+v vs %+v", parsed, tx)
	}
}
