// Package attach reads user attachments and encodes them for the model.
package attach

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/comigor/nexucore/internal/logger"
)

// MaxFileSize bounds a single attachment.
const MaxFileSize = 20 << 20

// ErrTooLarge is returned for an attachment over MaxFileSize.
var ErrTooLarge = errors.New("attachment exceeds size limit")

// Source is an attachment that has not been read yet.
type Source struct {
	Name     string
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// File is an encoded attachment.
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Bytes decodes the payload.
func (f File) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// IsImage reports whether the attachment is an image.
func (f File) IsImage() bool { return strings.HasPrefix(f.MimeType, "image/") }

// IsText reports whether the attachment can be sent as plain text.
func (f File) IsText() bool {
	switch {
	case strings.HasPrefix(f.MimeType, "text/"):
		return true
	case f.MimeType == "application/json", f.MimeType == "application/xml", f.MimeType == "application/x-yaml":
		return true
	}
	return false
}

// Encode reads every source concurrently. The result keeps the order of
// sources regardless of which read finishes first. The first failure cancels
// the remaining reads.
func Encode(ctx context.Context, sources []Source) ([]File, error) {
	files := make([]File, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := read(src)
			if err != nil {
				return fmt.Errorf("read attachment %q: %w", src.Name, err)
			}
			files[i] = f
			logger.L.Debug("Encoded attachment", "name", f.Name, "mime", f.MimeType, "index", i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func read(src Source) (File, error) {
	rc, err := src.Open()
	if err != nil {
		return File{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return File{}, err
	}
	if len(data) > MaxFileSize {
		return File{}, ErrTooLarge
	}
	return File{
		Name:     src.Name,
		MimeType: detect(src.Name, src.MimeType, data),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// detect prefers the declared type, then the file extension, then sniffing.
func detect(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

// FromPath is a source backed by a local file.
func FromPath(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FromMultipart is a source backed by an uploaded form file.
func FromMultipart(fh *multipart.FileHeader) Source {
	return Source{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes is an in-memory source.
func FromBytes(name, mimeType string, data []byte) Source {
	return Source{
		Name:     name,
		MimeType: mimeType,
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
