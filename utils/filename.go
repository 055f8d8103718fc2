package utils

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MockupFileName returns the deterministic file name of a persisted vendor mockup
func MockupFileName(productID int64, variantID int) string {
	return fmt.Sprintf("printful-mockup-%d-%d.jpg", productID, variantID)
}

// StorageKeyFromURL derives an object key from the last two path segments of
// an object URL, e.g. https://bucket.s3.region.amazonaws.com/generated/x.png
// yields "generated/x.png".
func StorageKeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid object URL %q: %w", rawURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("object URL %q has no prefix/name path", rawURL)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

// UniqueObjectKey builds prefix + uuid, keeping the extension of filename.
// Files without an extension keep none.
func UniqueObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return prefix + uuid.NewString() + ext
}

// PNGDataURL wraps PNG bytes in a data URL
func PNGDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
