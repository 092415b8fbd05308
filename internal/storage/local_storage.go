package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
)

// LocalImageFetcher reads scanned sheets from the local filesystem. URLs
// use the file:// scheme or a bare path.
type LocalImageFetcher struct {
	baseDir string
}

// NewLocalImageFetcher creates a filesystem fetcher rooted at baseDir.
// An empty baseDir allows absolute paths only.
func NewLocalImageFetcher(baseDir string) ImageFetcher {
	return &LocalImageFetcher{baseDir: baseDir}
}

func (l *LocalImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(imageURL, "file://")
	if l.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sheet image %q: %w", path, err)
	}
	return img, nil
}
