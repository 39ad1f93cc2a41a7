package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MaxImageBytes caps embedded images; the whole collection is rewritten on
// every mutation so large payloads make every save slow.
const MaxImageBytes = 5 << 20

var (
	ErrNotImage      = errors.New("not an image")
	ErrImageTooLarge = errors.New("image too large")
)

// ImageDataURI reads an image file and embeds it as a base64 data URI.
func ImageDataURI(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(b) > MaxImageBytes {
		return "", fmt.Errorf("%s (%d bytes): %w", path, len(b), ErrImageTooLarge)
	}
	mime := http.DetectContentType(b)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is %s: %w", path, mime, ErrNotImage)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
