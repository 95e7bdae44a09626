package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// maxReceiptSize caps receipt uploads at 10 MB.
const maxReceiptSize = 10 << 20

var allowedReceiptTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// handleUploadReceipt accepts a multipart image, stores it in the blob store,
// makes it public, and returns the shareable links. The caller attaches the
// view link to the transaction it creates next.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.receiptStore == nil {
		respondError(w, http.StatusServiceUnavailable, "receipt uploads not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "receipt too large (max 10 MB)")
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing receipt file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read receipt")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !allowedReceiptTypes[strings.ToLower(contentType)] {
		respondError(w, http.StatusUnsupportedMediaType, "receipt must be a JPEG, PNG, WebP or HEIC image")
		return
	}

	name := fmt.Sprintf("receipt_%s%s",
		time.Now().UTC().Format("20060102_150405"),
		strings.ToLower(filepath.Ext(header.Filename)))

	cctx, cancel := newRemoteContext(r)
	defer cancel()

	fileID, err := s.receiptStore.Upload(cctx, name, contentType, data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt upload failed", "error", err, "name", name)
		respondError(w, http.StatusBadGateway, "blob store unavailable")
		return
	}
	if err := s.receiptStore.MakePublic(cctx, fileID); err != nil {
		slog.ErrorContext(r.Context(), "Receipt publish failed", "error", err, "file_id", fileID)
		respondError(w, http.StatusBadGateway, "failed to publish receipt")
		return
	}
	links, err := s.receiptStore.GetLinks(cctx, fileID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt link fetch failed", "error", err, "file_id", fileID)
		respondError(w, http.StatusBadGateway, "failed to fetch receipt links")
		return
	}

	slog.InfoContext(r.Context(), "Receipt uploaded", "file_id", fileID, "name", name, "bytes", len(data))
	respondJSON(w, http.StatusCreated, struct {
		FileID        string `json:"fileId"`
		ViewLink      string `json:"viewLink"`
		DownloadLink  string `json:"downloadLink"`
		ThumbnailLink string `json:"thumbnailLink"`
	}{FileID: fileID, ViewLink: links.ViewLink, DownloadLink: links.DownloadLink, ThumbnailLink: links.ThumbnailLink})
}
