package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/dmitrymomot/upresume/pkg/id"
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PutImage uploads a multipart image under prefix with a generated short ID key.
// Only JPEG, PNG, GIF and WebP up to maxSize bytes are accepted.
func PutImage(ctx context.Context, s Storage, fh *multipart.FileHeader, prefix string, maxSize int64) (*FileInfo, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if maxSize > 0 && fh.Size > maxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, fh.Size, maxSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()

	// Buffered so the S3 client gets a seekable body.
	data, err := io.ReadAll(io.LimitReader(f, fh.Size))
	if err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}
	contentType := DetectContentType(data)

	ext, ok := imageExt[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMIME, contentType)
	}

	key := Key(prefix, id.NewShortID()+ext)
	if err := s.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, err
	}

	return &FileInfo{Key: key, URL: s.URL(key), ContentType: contentType, Size: int64(len(data))}, nil
}

// DetectContentType sniffs the MIME type from the leading bytes, without parameters.
func DetectContentType(data []byte) string {
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return strings.TrimSpace(ct)
}

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// Key joins sanitized path segments into an object key.
func Key(segments ...string) string {
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.Trim(strings.ReplaceAll(seg, "..", ""), " /\\")
		seg = unsafeSegment.ReplaceAllString(seg, "_")
		if seg != "" {
			clean = append(clean, seg)
		}
	}
	return path.Join(clean...)
}
