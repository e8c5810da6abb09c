package attach

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowSource finishes after d, so later sources can complete first.
func slowSource(name string, d time.Duration) Source {
	return Source{
		Name:     name,
		MimeType: "text/plain",
		Open: func() (io.ReadCloser, error) {
			time.Sleep(d)
			return io.NopCloser(strings.NewReader(name)), nil
		},
	}
}

func TestEncodeKeepsSelectionOrder(t *testing.T) {
	sources := []Source{
		slowSource("first", 30*time.Millisecond),
		slowSource("second", 10*time.Millisecond),
		slowSource("third", 0),
	}
	files, err := Encode(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i, name := range []string{"first", "second", "third"} {
		assert.Equal(t, name, files[i].Name)
		data, err := files[i].Bytes()
		require.NoError(t, err)
		assert.Equal(t, name, string(data))
	}
}

func TestEncodeFailure(t *testing.T) {
	boom := errors.New("boom")
	sources := []Source{
		FromBytes("ok.txt", "text/plain", []byte("ok")),
		{Name: "bad.png", Open: func() (io.ReadCloser, error) { return nil, boom }},
	}
	_, err := Encode(context.Background(), sources)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad.png")
}

func TestEncodeTooLarge(t *testing.T) {
	big := make([]byte, MaxFileSize+1)
	_, err := Encode(context.Background(), []Source{FromBytes("big.bin", "", big)})
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestFromPathDetectsType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

	files, err := Encode(context.Background(), []Source{FromPath(path)})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.json", files[0].Name)
	assert.Equal(t, "application/json", files[0].MimeType)
	assert.True(t, files[0].IsText())
	assert.False(t, files[0].IsImage())
}

func TestDetectSniffsUnknownExtension(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", detect("blob", "", png))
	assert.Equal(t, "image/jpeg", detect("x.png", "image/jpeg", png))
}
