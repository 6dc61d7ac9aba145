package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureImageFetcher implements ImageFetcher against Azure Blob Storage,
// for deployments that stage uploaded transcript screenshots in a blob
// container instead of serving them over plain HTTP.
type AzureImageFetcher struct {
	client *azblob.Client
}

// NewAzureImageFetcher creates a blob-backed image fetcher with shared-key
// credentials.
func NewAzureImageFetcher(accountName, accountKey string) (*AzureImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating azure client: %w", err)
	}

	return &AzureImageFetcher{client: client}, nil
}

// FetchImage downloads and decodes a blob addressed as
// https://<account>.blob.core.windows.net/<container>/<blob path>.
func (f *AzureImageFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, error) {
	container, blobName, err := splitBlobPath(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("blob download failed: %w", err)
	}
	defer resp.Body.Close()

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode blob image: %w", err)
	}
	return img, nil
}

func splitBlobPath(blobURL string) (container, blobName string, err error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	parts := strings.SplitN(strings.TrimPrefix(parsed.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("blob URL must contain container and blob name: %s", blobURL)
	}
	return parts[0], parts[1], nil
}
