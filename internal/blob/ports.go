// Package blob defines the port for the remote blob store holding receipt
// images.
package blob

import "context"

// Links are the shareable URLs for one stored file.
type Links struct {
	ViewLink      string
	DownloadLink  string
	ThumbnailLink string
}

// Store is the remote blob store interface. Files are uploaded private,
// made public, and then referenced by their view link from ledger rows.
type Store interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (fileID string, err error)
	MakePublic(ctx context.Context, fileID string) error
	GetLinks(ctx context.Context, fileID string) (Links, error)
}
