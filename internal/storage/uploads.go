package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrUnsupportedMedia = errors.New("only image and video files are accepted")

// File is an upload waiting to be stored.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadSeekCloser, error)
}

// FromMultipart adapts form file headers.
func FromMultipart(headers []*multipart.FileHeader) []File {
	files := make([]File, 0, len(headers))
	for _, h := range headers {
		files = append(files, File{
			Name: h.Filename,
			Size: h.Size,
			Open: func() (io.ReadSeekCloser, error) { return h.Open() },
		})
	}
	return files
}

// Stored is a file that has been written to storage.
type Stored struct {
	Key         string
	Kind        models.MediaKind
	ContentType string
}

// DetectKind sniffs the content and classifies it. Anything that is not
// an image or a video is rejected.
func DetectKind(r io.Reader) (models.MediaKind, *mimetype.MIME, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("detect content type: %w", err)
	}
	switch {
	case strings.HasPrefix(mt.String(), "video/"):
		return models.MediaVideo, mt, nil
	case strings.HasPrefix(mt.String(), "image/"):
		return models.MediaImage, mt, nil
	}
	return "", mt, ErrUnsupportedMedia
}

// SaveAll writes the files under prefix in parallel. Results keep the
// input order. If any file fails, the ones already written are removed.
func SaveAll(ctx context.Context, st Storage, prefix string, files []File) ([]Stored, error) {
	out := make([]Stored, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, f := range files {
		g.Go(func() error {
			stored, err := save(gctx, st, prefix, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			out[i] = stored
			done[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var written []Stored
		for i, ok := range done {
			if ok {
				written = append(written, out[i])
			}
		}
		Discard(context.WithoutCancel(ctx), st, written)
		return nil, err
	}
	return out, nil
}

func save(ctx context.Context, st Storage, prefix string, f File) (Stored, error) {
	rc, err := f.Open()
	if err != nil {
		return Stored{}, err
	}
	defer rc.Close()

	kind, mt, err := DetectKind(rc)
	if err != nil {
		return Stored{}, err
	}
	if _, err := rc.Seek(0, io.SeekStart); err != nil {
		return Stored{}, err
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(f.Name))
	}
	key := prefix + uuid.NewString() + ext
	if err := st.Put(ctx, key, rc, f.Size, mt.String()); err != nil {
		return Stored{}, err
	}
	return Stored{Key: key, Kind: kind, ContentType: mt.String()}, nil
}

// Discard removes stored files on a best-effort basis.
func Discard(ctx context.Context, st Storage, files []Stored) {
	for _, f := range files {
		if err := st.Delete(ctx, f.Key); err != nil {
			slog.Warn("failed to discard upload", "key", f.Key, "error", err)
		}
	}
}

// DiscardKeys is Discard for bare keys.
func DiscardKeys(ctx context.Context, st Storage, keys []string) {
	files := make([]Stored, len(keys))
	for i, k := range keys {
		files[i] = Stored{Key: k}
	}
	Discard(ctx, st, files)
}
