package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/internal/storage"
	"github.com/fileshelf/backend/pkg/logger"
)

// FileFinder loads an owned file record for a thumbnail job.
type FileFinder interface {
	FindOwnedFile(ctx context.Context, userID, id primitive.ObjectID) (*models.File, error)
}

// BlobStore is the content-store surface the pipeline reads base blobs from
// and writes derivatives to.
type BlobStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Remove(path string) error
}

// ThumbnailWorker derives resized image variants for uploaded images. A job
// either produces every derivative or none: partial results are removed
// before the job fails. Regeneration overwrites, so redelivered jobs are
// safe.
type ThumbnailWorker struct {
	files   FileFinder
	content BlobStore
}

func NewThumbnailWorker(files FileFinder, content BlobStore) *ThumbnailWorker {
	return &ThumbnailWorker{files: files, content: content}
}

// Handle processes one thumbnail job payload.
func (w *ThumbnailWorker) Handle(ctx context.Context, payload []byte) error {
	var job services.ThumbnailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("decoding thumbnail job: %w", err)
	}
	if job.UserID == "" {
		return errors.New("Missing userId")
	}
	if job.FileID == "" {
		return errors.New("Missing fileId")
	}

	userID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return errors.New("File not found")
	}
	fileID, err := primitive.ObjectIDFromHex(job.FileID)
	if err != nil {
		return errors.New("File not found")
	}

	file, err := w.files.FindOwnedFile(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errors.New("File not found")
		}
		return fmt.Errorf("loading file record: %w", err)
	}

	if err := w.generateAll(file.LocalPath); err != nil {
		return err
	}

	logger.InfoWithUser(job.UserID, "thumbnails_created", map[string]interface{}{
		"file_id": job.FileID,
	})
	return nil
}

// generateAll derives every configured width concurrently from the base
// blob. On any failure it removes the derivatives that did succeed and
// returns an aggregate error.
func (w *ThumbnailWorker) generateAll(localPath string) error {
	src, err := w.content.Read(localPath)
	if err != nil {
		return fmt.Errorf("reading base blob: %w", err)
	}

	type outcome struct {
		width int
		err   error
	}

	results := make([]outcome, len(services.ThumbnailWidths))
	var wg sync.WaitGroup
	for i, width := range services.ThumbnailWidths {
		wg.Add(1)
		go func(i, width int) {
			defer wg.Done()
			results[i] = outcome{width: width, err: w.generate(src, localPath, width)}
		}(i, width)
	}
	wg.Wait()

	var failed []int
	var succeeded []int
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.width)
		} else {
			succeeded = append(succeeded, r.width)
		}
	}

	if len(failed) > 0 {
		w.cleanup(localPath, succeeded)
		return fmt.Errorf("could not create thumbnails for widths %v", failed)
	}
	return nil
}

func (w *ThumbnailWorker) generate(src []byte, localPath string, width int) error {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	encodeFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		encodeFormat = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, encodeFormat); err != nil {
		return fmt.Errorf("encoding thumbnail: %w", err)
	}

	return w.content.Write(storage.DerivativePath(localPath, width), buf.Bytes())
}

// cleanup removes derivatives left behind by a partially failed job.
func (w *ThumbnailWorker) cleanup(localPath string, widths []int) {
	for _, width := range widths {
		path := storage.DerivativePath(localPath, width)
		if err := w.content.Remove(path); err != nil {
			logger.Error("thumbnail_cleanup_failed", err, map[string]interface{}{
				"path": path,
			})
		}
	}
}
