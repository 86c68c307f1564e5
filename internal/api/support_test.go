package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumesentry/internal/database"
	"resumesentry/internal/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"admins", "freelancers", "resumes", "submitted_resumes", "freelancer_details", "wallets"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return db
}

type fakeObjectStore struct {
	objects map[string][]byte
	deleted []string

	deleteErrFor map[string]error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:      map[string][]byte{},
		deleteErrFor: map[string]error{},
	}
}

func (s *fakeObjectStore) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.objects[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (s *fakeObjectStore) StatObject(_ context.Context, objectKey string) (*storage.ObjectMeta, error) {
	b, ok := s.objects[objectKey]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return &storage.ObjectMeta{
		Key:          objectKey,
		Size:         int64(len(b)),
		ContentType:  "application/pdf",
		LastModified: time.Now(),
	}, nil
}

func (s *fakeObjectStore) OpenObject(_ context.Context, objectKey string) (io.ReadCloser, error) {
	b, ok := s.objects[objectKey]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeObjectStore) DeleteObject(_ context.Context, objectKey string) error {
	if err, ok := s.deleteErrFor[objectKey]; ok {
		return err
	}
	s.deleted = append(s.deleted, objectKey)
	delete(s.objects, objectKey)
	return nil
}

func (s *fakeObjectStore) ObjectKey(category, filename string) string {
	return category + "/" + filename
}

func newJSONContext(t *testing.T, method, target string, payload any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func paramPair(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
