package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sothuchi/internal/core"
)

type transactionPayload struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	SubCategory   string  `json:"subCategory,omitempty"`
	AmountDong    int64   `json:"amountDong"`
	AmountDisplay string  `json:"amountDisplay"`
	Type          string  `json:"type"`
	ReceiptLink   string  `json:"receiptLink,omitempty"`
	Timestamp     string  `json:"timestamp"`
	Quantity      float64 `json:"quantity,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Note          string  `json:"note,omitempty"`
	FuelLiters    float64 `json:"fuelLiters,omitempty"`
}

type createTransactionRequest struct {
	Date          string  `json:"date"`
	Category      string  `json:"category"`
	SubCategory   string  `json:"subCategory"`
	Amount        string  `json:"amount"`
	Type          string  `json:"type"`
	ReceiptLink   string  `json:"receiptLink"`
	Quantity      float64 `json:"quantity"`
	PaymentMethod string  `json:"paymentMethod"`
	Note          string  `json:"note"`
	FuelLiters    float64 `json:"fuelLiters"`
}

type createTransactionResponse struct {
	Transaction   transactionPayload `json:"transaction"`
	AmountInWords string             `json:"amountInWords"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	items, err := s.getMonthItems(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err, "year", year, "month", month)
		respondError(w, http.StatusBadGateway, "remote store unavailable")
		return
	}

	payload := struct {
		Year         int                  `json:"year"`
		Month        int                  `json:"month"`
		Transactions []transactionPayload `json:"transactions"`
		Skipped      int                  `json:"skipped"`
	}{Year: year, Month: month, Transactions: []transactionPayload{}, Skipped: items.Skipped}

	for _, tx := range items.Txs {
		payload.Transactions = append(payload.Transactions, toPayload(tx))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}
	dong, err := core.ParseAmountToDong(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	txType, ok := core.ParseTxType(req.Type)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "type must be income or expense")
		return
	}

	tx := core.Transaction{
		Date:          date,
		Category:      sanitizeInput(req.Category),
		SubCategory:   sanitizeInput(req.SubCategory),
		Amount:        core.Money{Dong: dong},
		Type:          txType,
		ReceiptLink:   sanitizeInput(req.ReceiptLink),
		Quantity:      req.Quantity,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Note:          sanitizeInput(req.Note),
		FuelLiters:    req.FuelLiters,
	}

	stored, err := s.txService.Create(r.Context(), tx)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) || errors.Is(err, core.ErrInvalidAmount) ||
			errors.Is(err, core.ErrInvalidType) || errors.Is(err, core.ErrEmptyCategory) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	// The month listing is now stale alongside the summary.
	s.invalidateMonth(stored.Date.Year(), stored.Date.Month())

	respondJSON(w, http.StatusCreated, createTransactionResponse{
		Transaction:   toPayload(stored),
		AmountInWords: core.AmountInWords(stored.Amount),
	})
}

func toPayload(tx core.Transaction) transactionPayload {
	return transactionPayload{
		ID:            tx.ID,
		Date:          tx.Date.Format("2006-01-02"),
		Category:      tx.Category,
		SubCategory:   tx.SubCategory,
		AmountDong:    tx.Amount.Dong,
		AmountDisplay: core.FormatDong(tx.Amount.Dong),
		Type:          string(tx.Type),
		ReceiptLink:   tx.ReceiptLink,
		Timestamp:     tx.Timestamp.UTC().Format(time.RFC3339),
		Quantity:      tx.Quantity,
		PaymentMethod: tx.PaymentMethod,
		Note:          tx.Note,
		FuelLiters:    tx.FuelLiters,
	}
}
