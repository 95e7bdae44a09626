package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sothuchi/internal/core"
	ports "sothuchi/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client talks to the remote tabular store (a Google spreadsheet) through a
// service account. One sheet holds the transaction ledger, one holds the
// category taxonomy.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
}

// Ensure interface conformance
var (
	_ ports.TransactionAppender = (*Client)(nil)
	_ ports.TransactionLister   = (*Client)(nil)
	_ ports.TaxonomyReader      = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: GOOGLE_SHEET_NAME (default "GiaoDich"),
// GOOGLE_CATEGORIES_SHEET_NAME (default "DanhMuc").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	txSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if txSheet == "" {
		txSheet = "GiaoDich"
	}
	catSheet := strings.TrimSpace(os.Getenv("GOOGLE_CATEGORIES_SHEET_NAME"))
	if catSheet == "" {
		catSheet = "DanhMuc"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: txSheet,
		categoriesSheet:   catSheet,
	}, nil
}

// newSheetsService initializes a Sheets service using service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountJSON(ctx)
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountJSON(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Loaded service account credentials", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Append writes the transaction as one new row at the end of the ledger sheet.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:L", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{transactionToRow(tx)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.transactionsSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ListTransactions scans the ledger sheet and returns the rows whose date
// falls in the given month window. Parsing is best-effort: unparsable rows
// are dropped and tallied, never fatal.
func (c *Client) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, int, error) {
	if c.svc == nil {
		return nil, 0, errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return nil, 0, fmt.Errorf("invalid month: %d", month)
	}

	rng := fmt.Sprintf("%s!A:L", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", rng, err)
	}

	txs, skipped := parseTransactions(resp.Values, year, month)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed ledger rows",
			"sheet", c.transactionsSheet, "year", year, "month", month, "skipped", skipped)
	}
	return txs, skipped, nil
}

// List reads the taxonomy sheet: column A holds categories, column B the
// subcategory with its parent repeated per row.
func (c *Client) List(ctx context.Context) ([]string, map[string][]string, error) {
	if c.svc == nil {
		return nil, nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:B200", c.categoriesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var cats []string
	subs := map[string][]string{}
	seen := map[string]struct{}{}
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) == 0 {
			continue
		}
		cat := cols[0]
		if cat == "" || strings.HasPrefix(cat, "#") {
			continue
		}
		if _, ok := seen[cat]; !ok {
			seen[cat] = struct{}{}
			cats = append(cats, cat)
		}
		if len(cols) >= 2 && cols[1] != "" {
			subs[cat] = appendUnique(subs[cat], cols[1])
		}
	}
	return cats, subs, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
