package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/models"
)

// duplicateKeyError mimics the driver error produced by a unique-index
// violation.
func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

type fakeUserStore struct {
	byID    map[primitive.ObjectID]*models.User
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    map[primitive.ObjectID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (f *fakeUserStore) InsertUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return primitive.NilObjectID, duplicateKeyError()
	}
	stored := *user
	stored.ID = primitive.NewObjectID()
	f.byID[stored.ID] = &stored
	f.byEmail[stored.Email] = &stored
	return stored.ID, nil
}

func (f *fakeUserStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

type fakeFileStore struct {
	files map[primitive.ObjectID]*models.File

	insertErr error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[primitive.ObjectID]*models.File{}}
}

func (f *fakeFileStore) InsertFile(_ context.Context, file *models.File) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	stored := *file
	stored.ID = primitive.NewObjectID()
	f.files[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeFileStore) FindFileByID(_ context.Context, id primitive.ObjectID) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileStore) FindOwnedFile(_ context.Context, userID, id primitive.ObjectID) (*models.File, error) {
	file, ok := f.files[id]
	if !ok || file.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileStore) SetFilePublic(_ context.Context, userID, id primitive.ObjectID, public bool) error {
	file, ok := f.files[id]
	if !ok || file.UserID != userID {
		return mongo.ErrNoDocuments
	}
	file.IsPublic = public
	return nil
}

func (f *fakeFileStore) ListFiles(_ context.Context, userID primitive.ObjectID, parent models.ParentRef, page int64) ([]models.File, error) {
	var out []models.File
	for _, file := range f.files {
		if file.UserID != userID {
			continue
		}
		if file.ParentID.String() != parent.String() {
			continue
		}
		out = append(out, *file)
	}
	start := page * 20
	if start >= int64(len(out)) {
		return []models.File{}, nil
	}
	return out[start:], nil
}

type fakeSessionStore struct {
	values map[string]string

	setErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{values: map[string]string{}}
}

func (f *fakeSessionStore) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeSessionStore) SetEx(_ context.Context, key, value string, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeSessionStore) Del(_ context.Context, key string) (bool, error) {
	_, ok := f.values[key]
	delete(f.values, key)
	return ok, nil
}

type memContentStore struct {
	blobs map[string][]byte
}

func newMemContentStore() *memContentStore {
	return &memContentStore{blobs: map[string][]byte{}}
}

func (m *memContentStore) Save(name string, data []byte) (string, error) {
	path := "/blobs/" + name
	m.blobs[path] = data
	return path, nil
}

func (m *memContentStore) Read(path string) ([]byte, error) {
	data, ok := m.blobs[path]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", path)
	}
	return data, nil
}

func (m *memContentStore) Exists(path string) bool {
	_, ok := m.blobs[path]
	return ok
}

type recordingQueue struct {
	payloads []any

	err error
}

func (q *recordingQueue) Enqueue(_ context.Context, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}
