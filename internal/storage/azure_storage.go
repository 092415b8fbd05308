package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage retrieves scanned sheets stored as Azure blobs.
type BlobStorage interface {
	GetImage(ctx context.Context, blobURL string) (image.Image, error)
}

type azureStorage struct {
	client *azblob.Client
}

// NewAzureStorage builds a shared-key Azure blob client for sheet scans.
func NewAzureStorage(accountName string, accountKey string) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureStorage{client: client}, nil
}

// GetImage downloads and decodes one blob. The URL path names the
// container; the blob name is passed as the "blob" query parameter.
func (s *azureStorage) GetImage(ctx context.Context, blobURL string) (image.Image, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}
	if len(parsedURL.Path) < 2 {
		return nil, fmt.Errorf("blob URL %q has no container path", blobURL)
	}

	containerName := parsedURL.Path[1:]
	blobName := parsedURL.Query().Get("blob")

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	img, _, err := image.Decode(retryReader)
	return img, err
}

// azureFetcher adapts BlobStorage to the ImageFetcher interface.
type azureFetcher struct {
	blobs BlobStorage
}

// NewAzureImageFetcher wraps Azure blob storage as an ImageFetcher.
func NewAzureImageFetcher(accountName, accountKey string) (ImageFetcher, error) {
	blobs, err := NewAzureStorage(accountName, accountKey)
	if err != nil {
		return nil, err
	}
	return &azureFetcher{blobs: blobs}, nil
}

func (a *azureFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	return a.blobs.GetImage(ctx, imageURL)
}
