package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sothuchi/internal/core"
	"sothuchi/internal/summary"
)

// topCategoriesLimit bounds the rollup returned with the summary.
const topCategoriesLimit = 5

type categoryPayload struct {
	Category      string `json:"category"`
	AmountDong    int64  `json:"amountDong"`
	AmountDisplay string `json:"amountDisplay"`
}

type summaryPayload struct {
	Year                int               `json:"year"`
	Month               int               `json:"month"`
	TotalIncomeDong     int64             `json:"totalIncomeDong"`
	TotalExpenseDong    int64             `json:"totalExpenseDong"`
	BalanceDong         int64             `json:"balanceDong"`
	TotalIncomeDisplay  string            `json:"totalIncomeDisplay"`
	TotalExpenseDisplay string            `json:"totalExpenseDisplay"`
	BalanceDisplay      string            `json:"balanceDisplay"`
	Skipped             int               `json:"skipped"`
	TopCategories       []categoryPayload `json:"topCategories"`
	Cached              bool              `json:"cached"`
	Error               string            `json:"error,omitempty"`
}

// handleSummary serves the monthly totals. The summary itself is served from
// the keyed TTL cache; top categories come from the (also cached) month
// listing. refresh=1 bypasses both caches.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, month := parseYearMonth(r)
	refresh := isTruthy(r.URL.Query().Get("refresh"))
	now := time.Now()

	payload := summaryPayload{Year: year, Month: month, TopCategories: []categoryPayload{}}

	sum, hit := s.summaryCache.Get(year, month, refresh, now)
	if refresh {
		// Force a refetch of the listing too; the cached summary stays until
		// the recomputed value overwrites it.
		s.invalidateItems(year, month)
	}

	items, err := s.getMonthItems(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary fetch failed", "error", err, "year", year, "month", month)
		if hit {
			// Serve the still-fresh cached totals rather than failing the
			// read; only the category rollup is unavailable.
			fillSummary(&payload, sum, true)
			respondJSON(w, http.StatusOK, payload)
			return
		}
		payload.Error = "remote store unavailable"
		respondJSON(w, http.StatusBadGateway, payload)
		return
	}

	if !hit {
		sum = summary.ComputeSummary(items.Txs)
		sum.Skipped += items.Skipped
		s.summaryCache.Put(year, month, sum, now)
	}

	fillSummary(&payload, sum, hit)
	for _, cat := range summary.TopCategories(items.Txs, topCategoriesLimit) {
		payload.TopCategories = append(payload.TopCategories, categoryPayload{
			Category:      cat.Category,
			AmountDong:    cat.Amount.Dong,
			AmountDisplay: core.FormatDong(cat.Amount.Dong),
		})
	}
	respondJSON(w, http.StatusOK, payload)
}

func fillSummary(p *summaryPayload, sum summary.Summary, cached bool) {
	p.TotalIncomeDong = sum.TotalIncome.Dong
	p.TotalExpenseDong = sum.TotalExpense.Dong
	p.BalanceDong = sum.Balance.Dong
	p.TotalIncomeDisplay = core.FormatDong(sum.TotalIncome.Dong)
	p.TotalExpenseDisplay = core.FormatDong(sum.TotalExpense.Dong)
	p.BalanceDisplay = core.FormatDong(sum.Balance.Dong)
	p.Skipped = sum.Skipped
	p.Cached = cached
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
