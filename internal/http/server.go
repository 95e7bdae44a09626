// Package http serves the JSON API over the remote ledger: monthly summary,
// transaction entry and listing, receipt uploads, and the car operating-cost
// view.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"sothuchi/internal/blob"
	"sothuchi/internal/cache"
	"sothuchi/internal/core"
	"sothuchi/internal/services"
	"sothuchi/internal/sheets"
	"sothuchi/internal/summary"
)

// remoteTimeout bounds every call to the remote store from a handler.
const remoteTimeout = 7 * time.Second

type Server struct {
	http.Server
	txLister     sheets.TransactionLister
	taxReader    sheets.TaxonomyReader
	receiptStore blob.Store
	txService    *services.TransactionService
	rateLimiter  *rateLimiter

	summaryCache *summary.Cache
	itemsCache   *cache.LRU[monthItems]

	shutdownOnce sync.Once
}

// monthItems is one cached month listing together with its skipped-row tally.
type monthItems struct {
	Txs     []core.Transaction
	Skipped int
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. The caches are injected so the write path and the cleanup
// manager share them.
func NewServer(addr string, lister sheets.TransactionLister, taxonomy sheets.TaxonomyReader,
	receipts blob.Store, txService *services.TransactionService,
	summaryCache *summary.Cache, itemsCache *cache.LRU[monthItems]) *Server {

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		txLister:     lister,
		taxReader:    taxonomy,
		receiptStore: receipts,
		txService:    txService,
		rateLimiter:  newRateLimiter(),
		summaryCache: summaryCache,
		itemsCache:   itemsCache,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/api/receipts", s.withSecurityHeaders(s.handleUploadReceipt))
	mux.HandleFunc("/api/car-ledger", s.withSecurityHeaders(s.handleCarLedger))
	mux.HandleFunc("/api/categories", s.withSecurityHeaders(s.handleCategories))

	return s
}

// NewItemsCache builds the per-month transaction list cache with the sizing
// used in production.
func NewItemsCache(ttl time.Duration) *cache.LRU[monthItems] {
	return cache.NewLRU[monthItems](200, ttl)
}

// Shutdown stops the HTTP listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type requestIDKey struct{}

// withSecurityHeaders adds security headers, rate limiting on writes, and
// request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// getMonthItems returns the month's transactions, serving from the list cache
// when fresh. Reads always originate from the remote store.
func (s *Server) getMonthItems(ctx context.Context, year, month int) (monthItems, error) {
	key := strconv.Itoa(year) + "-" + strconv.Itoa(month)

	if items, found := s.itemsCache.Get(key); found {
		slog.DebugContext(ctx, "Transaction list cache hit", "year", year, "month", month, "count", len(items.Txs))
		out := monthItems{Txs: make([]core.Transaction, len(items.Txs)), Skipped: items.Skipped}
		copy(out.Txs, items.Txs)
		return out, nil
	}

	cctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	txs, skipped, err := s.txLister.ListTransactions(cctx, year, month)
	if err != nil {
		return monthItems{}, fmt.Errorf("list month transactions (year=%d, month=%d): %w", year, month, err)
	}

	items := monthItems{Txs: txs, Skipped: skipped}
	s.itemsCache.Set(key, items)
	slog.DebugContext(ctx, "Transaction list cached", "year", year, "month", month, "count", len(txs), "skipped", skipped)
	return items, nil
}

func (s *Server) invalidateMonth(year, month int) {
	s.invalidateItems(year, month)
	s.summaryCache.Invalidate(year, month)
}

// invalidateItems drops only the month listing, leaving any cached summary in
// place.
func (s *Server) invalidateItems(year, month int) {
	s.itemsCache.Delete(strconv.Itoa(year) + "-" + strconv.Itoa(month))
}
