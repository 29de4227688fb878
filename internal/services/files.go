package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/pkg/logger"
)

// ThumbnailWidths are the derivative sizes generated for every image upload.
var ThumbnailWidths = []int{500, 250, 100}

// FileStore is the metadata-store surface for file records.
type FileStore interface {
	InsertFile(ctx context.Context, file *models.File) (primitive.ObjectID, error)
	FindFileByID(ctx context.Context, id primitive.ObjectID) (*models.File, error)
	FindOwnedFile(ctx context.Context, userID, id primitive.ObjectID) (*models.File, error)
	SetFilePublic(ctx context.Context, userID, id primitive.ObjectID, public bool) error
	ListFiles(ctx context.Context, userID primitive.ObjectID, parent models.ParentRef, page int64) ([]models.File, error)
}

// ContentStore is the blob storage surface the hierarchy service writes
// uploads to and reads downloads from.
type ContentStore interface {
	Save(name string, data []byte) (string, error)
	Read(path string) ([]byte, error)
	Exists(path string) bool
}

// ThumbnailJob is the payload enqueued for every uploaded image.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// FileService implements the file hierarchy: validated creation, listing,
// visibility toggles and content reads. Each operation is a single step
// against the metadata store; a blob write followed by a metadata insert is
// not atomic, and a failure in between leaves an orphaned blob that is
// logged, not reconciled.
type FileService struct {
	store      FileStore
	content    ContentStore
	thumbnails Enqueuer
}

func NewFileService(store FileStore, content ContentStore, thumbnails Enqueuer) *FileService {
	return &FileService{store: store, content: content, thumbnails: thumbnails}
}

// CreateRequest carries an upload after transport decoding. ParentID is the
// external string form: empty or "0" for root, a hex id otherwise.
type CreateRequest struct {
	Name     string
	Type     models.FileType
	Data     string
	ParentID string
	IsPublic bool
}

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Create validates and persists a folder, file or image. Validation order is
// fixed: name, type, data, then parent.
func (s *FileService) Create(ctx context.Context, userID string, req CreateRequest) (*models.File, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if req.Name == "" {
		return nil, badRequest("Missing name")
	}
	if !req.Type.Valid() {
		return nil, badRequest("Missing type")
	}
	if req.Data == "" && req.Type != models.TypeFolder {
		return nil, badRequest("Missing data")
	}

	parent, err := s.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		UserID:   owner,
		Name:     req.Name,
		Type:     req.Type,
		ParentID: parent,
		IsPublic: req.IsPublic,
	}

	if req.Type != models.TypeFolder {
		payload := req.Data
		if req.Type == models.TypeImage {
			payload = dataURLPrefix.ReplaceAllString(payload, "")
		}
		content, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, badRequest("Invalid data")
		}

		localPath, err := s.content.Save(uuid.NewString(), content)
		if err != nil {
			return nil, fmt.Errorf("writing blob: %w", err)
		}
		file.LocalPath = localPath
	}

	id, err := s.store.InsertFile(ctx, file)
	if err != nil {
		if file.LocalPath != "" {
			logger.ErrorWithUser(userID, "blob_orphaned", err, map[string]interface{}{
				"local_path": file.LocalPath,
			})
		}
		return nil, fmt.Errorf("inserting file record: %w", err)
	}
	file.ID = id

	if req.Type == models.TypeImage && s.thumbnails != nil {
		job := ThumbnailJob{UserID: userID, FileID: id.Hex()}
		if err := s.thumbnails.Enqueue(ctx, job); err != nil {
			logger.ErrorWithUser(userID, "thumbnail_enqueue_failed", err, map[string]interface{}{
				"file_id": id.Hex(),
			})
		}
	}

	return file, nil
}

// resolveParent checks the parent/child invariant for non-root parents: the
// referenced record must exist and be a folder. A malformed parent id fails
// the same way as an absent one.
func (s *FileService) resolveParent(ctx context.Context, parentID string) (models.ParentRef, error) {
	parent, err := models.ParseParentRef(parentID)
	if err != nil {
		return models.ParentRef{}, badRequest("Parent not found")
	}
	if parent.IsRoot() {
		return parent, nil
	}

	record, err := s.store.FindFileByID(ctx, parent.FolderID())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ParentRef{}, badRequest("Parent not found")
		}
		return models.ParentRef{}, fmt.Errorf("looking up parent: %w", err)
	}
	if record.Type != models.TypeFolder {
		return models.ParentRef{}, badRequest("Parent is not a folder")
	}
	return parent, nil
}

// GetByID fetches an owned record. Malformed ids and unowned records are both
// reported as absent.
func (s *FileService) GetByID(ctx context.Context, userID, fileID string) (*models.File, error) {
	owner, id, err := parseOwnedID(userID, fileID)
	if err != nil {
		return nil, err
	}
	file, err := s.store.FindOwnedFile(ctx, owner, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up file: %w", err)
	}
	return file, nil
}

// List returns one page of owned records under parentID. A malformed non-root
// parent yields an empty page rather than an error.
func (s *FileService) List(ctx context.Context, userID, parentID string, page int64) ([]models.File, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if page < 0 {
		page = 0
	}

	parent, err := models.ParseParentRef(parentID)
	if err != nil {
		return []models.File{}, nil
	}

	files, err := s.store.ListFiles(ctx, owner, parent, page)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}

// SetPublic updates the visibility flag on an owned record and returns the
// updated record.
func (s *FileService) SetPublic(ctx context.Context, userID, fileID string, value bool) (*models.File, error) {
	owner, id, err := parseOwnedID(userID, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetFilePublic(ctx, owner, id, value); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating visibility: %w", err)
	}

	file, err := s.store.FindOwnedFile(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("reloading file: %w", err)
	}
	return file, nil
}

// ReadContent returns the blob bytes for a record together with the MIME type
// derived from the record's name. Ownership is not required for the record
// lookup; a private record simply reads as absent to anyone but its owner, so
// existence is not leaked. size, when given for an image, redirects the read
// to the matching derivative.
func (s *FileService) ReadContent(ctx context.Context, fileID, requesterID, size string) ([]byte, string, error) {
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, "", ErrNotFound
	}

	file, err := s.store.FindFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("looking up file: %w", err)
	}

	if !file.IsPublic && (requesterID == "" || requesterID != file.UserID.Hex()) {
		return nil, "", ErrNotFound
	}
	if file.Type == models.TypeFolder {
		return nil, "", badRequest("A folder doesn't have content")
	}

	path := file.LocalPath
	if file.Type == models.TypeImage && size != "" {
		width, ok := thumbnailWidth(size)
		if !ok {
			return nil, "", badRequest("Not found")
		}
		path = derivativePath(path, width)
	}

	if !s.content.Exists(path) {
		return nil, "", ErrNotFound
	}
	data, err := s.content.Read(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading blob: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(file.Name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return data, mimeType, nil
}

func thumbnailWidth(size string) (int, bool) {
	for _, width := range ThumbnailWidths {
		if size == fmt.Sprint(width) {
			return width, true
		}
	}
	return 0, false
}

func derivativePath(localPath string, width int) string {
	return fmt.Sprintf("%s_%d", localPath, width)
}

func parseOwnedID(userID, fileID string) (primitive.ObjectID, primitive.ObjectID, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrNotFound
	}
	return owner, id, nil
}
