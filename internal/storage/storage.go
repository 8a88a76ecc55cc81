// Package storage uploads and deletes files in S3-compatible object storage
// and maps stored objects to their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForeignURL is returned when a URL does not point into the bucket.
	ErrForeignURL = errors.New("url is not served by this bucket")
	ErrEmptyPath  = errors.New("storage path is required")
)

// ObjectStore is the file storage surface used by the services.
type ObjectStore interface {
	// Upload stores data under path and returns its public URL.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, bucket, path string) error
	// PublicURLPrefix is the URL every object of bucket starts with, ending in "/".
	PublicURLPrefix(bucket string) string
}

func publicURLPrefix(baseURL, bucket string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/"
}

// PublicURL joins a bucket prefix and an object path.
func PublicURL(prefix, path string) string {
	return prefix + strings.TrimLeft(path, "/")
}

// PathFromPublicURL recovers the object path from a public URL. URLs that do
// not carry the bucket prefix, such as externally hosted images, are
// rejected with ErrForeignURL.
func PathFromPublicURL(prefix, url string) (string, error) {
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("%q: %w", url, ErrForeignURL)
	}
	path := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "", fmt.Errorf("%q: %w", url, ErrEmptyPath)
	}
	return path, nil
}
