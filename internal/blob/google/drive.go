package google

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"sothuchi/internal/blob"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

// Client stores receipt images in a Google Drive folder through a service
// account. Uploaded files are made public so their links can be pasted into
// ledger rows and opened without auth.
type Client struct {
	svc      *gdrive.Service
	folderID string
}

var _ blob.Store = (*Client)(nil)

// NewFromEnv creates a Drive client from environment variables.
// Required: GOOGLE_DRIVE_FOLDER_ID plus the same service account credentials
// the sheets client uses.
func NewFromEnv(ctx context.Context) (*Client, error) {
	folderID := strings.TrimSpace(os.Getenv("GOOGLE_DRIVE_FOLDER_ID"))
	if folderID == "" {
		return nil, errors.New("missing GOOGLE_DRIVE_FOLDER_ID")
	}

	credentialsJSON, err := serviceAccountJSON()
	if err != nil {
		return nil, err
	}

	svc, err := gdrive.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gdrive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{svc: svc, folderID: folderID}, nil
}

func serviceAccountJSON() ([]byte, error) {
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
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Upload stores the file in the configured folder and returns its file ID.
func (c *Client) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if c.svc == nil {
		return "", errors.New("drive service not initialized")
	}

	meta := &gdrive.File{
		Name:    name,
		Parents: []string{c.folderID},
	}
	f, err := c.svc.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload file %q: %w", name, err)
	}
	return f.Id, nil
}

// MakePublic grants anyone-with-the-link read access.
func (c *Client) MakePublic(ctx context.Context, fileID string) error {
	if c.svc == nil {
		return errors.New("drive service not initialized")
	}

	perm := &gdrive.Permission{Type: "anyone", Role: "reader"}
	if _, err := c.svc.Permissions.Create(fileID, perm).Context(ctx).Do(); err != nil {
		return fmt.Errorf("make file %s public: %w", fileID, err)
	}
	return nil
}

// GetLinks fetches the shareable links for a stored file.
func (c *Client) GetLinks(ctx context.Context, fileID string) (blob.Links, error) {
	if c.svc == nil {
		return blob.Links{}, errors.New("drive service not initialized")
	}

	f, err := c.svc.Files.Get(fileID).
		Fields("webViewLink", "webContentLink", "thumbnailLink").
		Context(ctx).Do()
	if err != nil {
		return blob.Links{}, fmt.Errorf("get links for %s: %w", fileID, err)
	}
	return blob.Links{
		ViewLink:      f.WebViewLink,
		DownloadLink:  f.WebContentLink,
		ThumbnailLink: f.ThumbnailLink,
	}, nil
}
