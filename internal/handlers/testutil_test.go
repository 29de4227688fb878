package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/middleware"
	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/internal/services"
)

// memStore is an in-memory stand-in for the metadata store, covering the
// user and file surfaces the services consume.
type memStore struct {
	usersByID    map[primitive.ObjectID]*models.User
	usersByEmail map[string]*models.User
	files        map[primitive.ObjectID]*models.File
}

func newMemStore() *memStore {
	return &memStore{
		usersByID:    map[primitive.ObjectID]*models.User{},
		usersByEmail: map[string]*models.User{},
		files:        map[primitive.ObjectID]*models.File{},
	}
}

func (s *memStore) InsertUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	if _, exists := s.usersByEmail[user.Email]; exists {
		return primitive.NilObjectID, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}
	stored := *user
	stored.ID = primitive.NewObjectID()
	s.usersByID[stored.ID] = &stored
	s.usersByEmail[stored.Email] = &stored
	return stored.ID, nil
}

func (s *memStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) InsertFile(_ context.Context, file *models.File) (primitive.ObjectID, error) {
	stored := *file
	stored.ID = primitive.NewObjectID()
	s.files[stored.ID] = &stored
	return stored.ID, nil
}

func (s *memStore) FindFileByID(_ context.Context, id primitive.ObjectID) (*models.File, error) {
	file, ok := s.files[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *file
	return &copied, nil
}

func (s *memStore) FindOwnedFile(_ context.Context, userID, id primitive.ObjectID) (*models.File, error) {
	file, ok := s.files[id]
	if !ok || file.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	copied := *file
	return &copied, nil
}

func (s *memStore) SetFilePublic(_ context.Context, userID, id primitive.ObjectID, public bool) error {
	file, ok := s.files[id]
	if !ok || file.UserID != userID {
		return mongo.ErrNoDocuments
	}
	file.IsPublic = public
	return nil
}

func (s *memStore) ListFiles(_ context.Context, userID primitive.ObjectID, parent models.ParentRef, page int64) ([]models.File, error) {
	out := []models.File{}
	for _, file := range s.files {
		if file.UserID == userID && file.ParentID.String() == parent.String() {
			out = append(out, *file)
		}
	}
	start := page * 20
	if start >= int64(len(out)) {
		return []models.File{}, nil
	}
	return out[start:], nil
}

func (s *memStore) CountUsers(context.Context) (int64, error) {
	return int64(len(s.usersByID)), nil
}

func (s *memStore) CountFiles(context.Context) (int64, error) {
	return int64(len(s.files)), nil
}

func (s *memStore) Ping(context.Context) error { return nil }

type memCache struct {
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *memCache) SetEx(_ context.Context, key, value string, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *memCache) Del(_ context.Context, key string) (bool, error) {
	_, ok := c.values[key]
	delete(c.values, key)
	return ok, nil
}

func (c *memCache) Ping(context.Context) error { return nil }

type memBlobs struct {
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}}
}

func (m *memBlobs) Save(name string, data []byte) (string, error) {
	path := "/blobs/" + name
	m.blobs[path] = data
	return path, nil
}

func (m *memBlobs) Read(path string) ([]byte, error) {
	data, ok := m.blobs[path]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", path)
	}
	return data, nil
}

func (m *memBlobs) Exists(path string) bool {
	_, ok := m.blobs[path]
	return ok
}

type recordedJobs struct {
	payloads []any
}

func (q *recordedJobs) Enqueue(_ context.Context, payload any) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

type testEnv struct {
	app   *fiber.App
	store *memStore
	blobs *memBlobs

	fileJobs *recordedJobs
	userJobs *recordedJobs
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	cache := newMemCache()
	blobs := newMemBlobs()
	fileJobs := &recordedJobs{}
	userJobs := &recordedJobs{}

	sessionService := services.NewSessionService(store, cache)
	userService := services.NewUserService(store, userJobs)
	fileService := services.NewFileService(store, blobs, fileJobs)

	appHandler := NewAppHandler(store, cache)
	authHandler := NewAuthHandler(sessionService)
	usersHandler := NewUsersHandler(userService)
	filesHandler := NewFilesHandler(fileService)

	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	app := fiber.New(fiber.Config{BodyLimit: 50 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Get("/status", appHandler.Status)
	app.Get("/stats", appHandler.Stats)

	app.Get("/connect", authHandler.Connect)
	app.Get("/disconnect", authHandler.Disconnect)

	app.Post("/users", usersHandler.Register)
	app.Get("/users/me", authMiddleware.RequireAuth, usersHandler.Me)

	app.Get("/files/:id/data", authMiddleware.OptionalAuth, filesHandler.Data)

	fileRoutes := app.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/", filesHandler.Create)
	fileRoutes.Get("/", filesHandler.Index)
	fileRoutes.Get("/:id", filesHandler.Show)
	fileRoutes.Put("/:id/publish", filesHandler.Publish)
	fileRoutes.Put("/:id/unpublish", filesHandler.Unpublish)

	return &testEnv{
		app:      app,
		store:    store,
		blobs:    blobs,
		fileJobs: fileJobs,
		userJobs: userJobs,
	}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}
	return payload
}

func decodeJSONList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload []map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}
	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertErrorBody(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %+v", expected, body)
	}
}

func basicAuthHeader(email, password string) map[string]string {
	return map[string]string{
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password)),
	}
}

func tokenHeader(token string) map[string]string {
	return map[string]string{middleware.TokenHeader: token}
}

func registerTestUser(t *testing.T, env *testEnv, email, password string) string {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/users", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	assertStatus(t, resp, http.StatusCreated)
	body := decodeJSONMap(t, resp)
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("expected a user id, got %+v", body)
	}
	return id
}

func loginTestUser(t *testing.T, env *testEnv, email, password string) string {
	t.Helper()

	resp := performRequest(t, env.app, http.MethodGet, "/connect", nil, basicAuthHeader(email, password))
	assertStatus(t, resp, http.StatusOK)
	body := decodeJSONMap(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected a session token, got %+v", body)
	}
	return token
}
