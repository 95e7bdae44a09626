package http

import (
	"log/slog"
	"net/http"

	"sothuchi/internal/core"
	"sothuchi/internal/summary"
)

type carLedgerPayload struct {
	Year                int     `json:"year"`
	Month               int     `json:"month"`
	TotalCostDong       int64   `json:"totalCostDong"`
	TotalCostDisplay    string  `json:"totalCostDisplay"`
	TotalLiters         float64 `json:"totalLiters"`
	CostPerLiterDong    int64   `json:"costPerLiterDong"`
	CostPerLiterDisplay string  `json:"costPerLiterDisplay"`
	Entries             int     `json:"entries"`
}

// handleCarLedger serves the vehicle operating-cost view for one month.
func (s *Server) handleCarLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, month := parseYearMonth(r)
	items, err := s.getMonthItems(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Car ledger fetch failed", "error", err, "year", year, "month", month)
		respondError(w, http.StatusBadGateway, "remote store unavailable")
		return
	}

	cl := summary.ComputeCarLedger(items.Txs)
	respondJSON(w, http.StatusOK, carLedgerPayload{
		Year:                year,
		Month:               month,
		TotalCostDong:       cl.TotalCost.Dong,
		TotalCostDisplay:    core.FormatDong(cl.TotalCost.Dong),
		TotalLiters:         cl.TotalLiters,
		CostPerLiterDong:    cl.CostPerLiter.Dong,
		CostPerLiterDisplay: core.FormatDong(cl.CostPerLiter.Dong),
		Entries:             cl.Entries,
	})
}

// handleCategories serves the category taxonomy for entry forms.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cats, subs, err := s.taxReader.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Taxonomy list failed", "error", err)
		respondError(w, http.StatusBadGateway, "remote store unavailable")
		return
	}
	if subs == nil {
		subs = map[string][]string{}
	}

	respondJSON(w, http.StatusOK, struct {
		Categories    []string            `json:"categories"`
		SubCategories map[string][]string `json:"subCategories"`
	}{Categories: cats, SubCategories: subs})
}
