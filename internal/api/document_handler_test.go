package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/database"
	"resumesentry/internal/storage"
)

func newDocumentHandler(t *testing.T, db *gorm.DB, store ObjectStore) *DocumentHandler {
	t.Helper()
	staging, err := storage.NewStaging(t.TempDir(), 10<<20)
	if err != nil {
		t.Fatalf("new staging: %v", err)
	}
	return NewDocumentHandler(db, store, staging, nil, nil)
}

func newDocumentUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadContext(t *testing.T, target, freelancerID string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = []gin.Param{{Key: "freelancer_id", Value: freelancerID}}
	return c, w
}

func TestUploadAadharCard_InsertThenUpdate(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := newDocumentHandler(t, db, store)

	body, contentType := newDocumentUpload(t, "aadhaar.pdf", map[string]string{"idProofType": "aadhaar"})
	c, w := uploadContext(t, "/resumes/uploadAadharCard/RAM123456", "RAM123456", body, contentType)
	h.UploadAadharCard(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var detail database.FreelancerDetail
	if err := db.Where("freelancer_id = ?", "RAM123456").First(&detail).Error; err != nil {
		t.Fatalf("load detail: %v", err)
	}
	if detail.DocumentObjectKey == "" || detail.IDType != "aadhaar" {
		t.Fatalf("detail not populated: key=%q type=%q", detail.DocumentObjectKey, detail.IDType)
	}
	if _, ok := store.objects[detail.DocumentObjectKey]; !ok {
		t.Fatalf("object %q not uploaded", detail.DocumentObjectKey)
	}
	firstKey := detail.DocumentObjectKey

	body, contentType = newDocumentUpload(t, "aadhaar-v2.pdf", map[string]string{"idProofType": "aadhaar"})
	c, w = uploadContext(t, "/resumes/uploadAadharCard/RAM123456", "RAM123456", body, contentType)
	h.UploadAadharCard(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on update got %d body=%s", w.Code, w.Body.String())
	}

	if err := db.Where("freelancer_id = ?", "RAM123456").First(&detail).Error; err != nil {
		t.Fatalf("reload detail: %v", err)
	}
	if detail.DocumentObjectKey == firstKey {
		t.Fatal("object key should change on re-upload")
	}

	var count int64
	if err := db.Model(&database.FreelancerDetail{}).Where("freelancer_id = ?", "RAM123456").Count(&count).Error; err != nil {
		t.Fatalf("count details: %v", err)
	}
	if count != 1 {
		t.Fatalf("detail rows = %d, want 1", count)
	}
}

func TestUploadAadharCard_RequiresIDProofType(t *testing.T) {
	db := newTestDB(t)
	h := newDocumentHandler(t, db, newFakeObjectStore())

	body, contentType := newDocumentUpload(t, "aadhaar.pdf", nil)
	c, w := uploadContext(t, "/resumes/uploadAadharCard/RAM123456", "RAM123456", body, contentType)
	h.UploadAadharCard(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["error"] != "ID Proof Type is required" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestUploadAddressCard_SetsAddressFields(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := newDocumentHandler(t, db, store)

	body, contentType := newDocumentUpload(t, "address.pdf", map[string]string{"addresstype": "utility-bill"})
	c, w := uploadContext(t, "/resumes/uploadAddressCard/RAM123456", "RAM123456", body, contentType)
	h.UploadAddressCard(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var detail database.FreelancerDetail
	if err := db.Where("freelancer_id = ?", "RAM123456").First(&detail).Error; err != nil {
		t.Fatalf("load detail: %v", err)
	}
	if detail.AddressProofObjectKey == "" || detail.AddressType != "utility-bill" {
		t.Fatalf("detail not populated: key=%q type=%q", detail.AddressProofObjectKey, detail.AddressType)
	}
	if !strings.HasPrefix(detail.AddressProofObjectKey, "documents/address/") {
		t.Fatalf("unexpected key %q", detail.AddressProofObjectKey)
	}
}

func TestUpdateApprovalStatus_Accepted(t *testing.T) {
	db := newTestDB(t)
	h := newDocumentHandler(t, db, newFakeObjectStore())
	seedFreelancer(t, db, "RAM123456", "Ramesh")

	c, w := newJSONContext(t, http.MethodPost, "/resumes/updateApprovalStatus", map[string]any{
		"freelancer_id": "RAM123456",
		"status":        "accepted",
	})
	h.UpdateApprovalStatus(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var f database.Freelancer
	if err := db.Where("user_id = ?", "RAM123456").First(&f).Error; err != nil {
		t.Fatalf("reload freelancer: %v", err)
	}
	if !f.IsApproved {
		t.Fatal("freelancer should be approved")
	}
}

func TestUpdateApprovalStatus_RejectedRequiresReason(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := newDocumentHandler(t, db, store)
	seedFreelancer(t, db, "RAM123456", "Ramesh")
	detail := database.FreelancerDetail{
		FreelancerID:          "RAM123456",
		DocumentObjectKey:     "documents/id/x.pdf",
		AddressProofObjectKey: "documents/address/y.pdf",
	}
	if err := db.Create(&detail).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}
	store.objects["documents/id/x.pdf"] = []byte("a")
	store.objects["documents/address/y.pdf"] = []byte("b")

	c, w := newJSONContext(t, http.MethodPost, "/resumes/updateApprovalStatus", map[string]any{
		"freelancer_id":    "RAM123456",
		"status":           "rejected",
		"id_reject_reason": "   ",
	})
	h.UpdateApprovalStatus(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}

	// 校验失败时不得有任何改动。
	var f database.Freelancer
	if err := db.Where("user_id = ?", "RAM123456").First(&f).Error; err != nil {
		t.Fatalf("reload freelancer: %v", err)
	}
	if f.IsApproved {
		t.Fatal("approval flag must be untouched")
	}
	if len(store.deleted) != 0 {
		t.Fatalf("no documents may be deleted, got %v", store.deleted)
	}
}

func TestUpdateApprovalStatus_RejectedDeletesDocuments(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := newDocumentHandler(t, db, store)
	seedFreelancer(t, db, "RAM123456", "Ramesh")
	detail := database.FreelancerDetail{
		FreelancerID:          "RAM123456",
		DocumentObjectKey:     "documents/id/x.pdf",
		AddressProofObjectKey: "documents/address/y.pdf",
	}
	if err := db.Create(&detail).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}
	store.objects["documents/id/x.pdf"] = []byte("a")
	store.objects["documents/address/y.pdf"] = []byte("b")

	c, w := newJSONContext(t, http.MethodPost, "/resumes/updateApprovalStatus", map[string]any{
		"freelancer_id":    "RAM123456",
		"status":           "rejected",
		"id_reject_reason": "document unreadable",
	})
	h.UpdateApprovalStatus(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	if len(store.deleted) != 2 {
		t.Fatalf("deleted = %v, want both documents", store.deleted)
	}

	var reloaded database.FreelancerDetail
	if err := db.Where("freelancer_id = ?", "RAM123456").First(&reloaded).Error; err != nil {
		t.Fatalf("reload detail: %v", err)
	}
	if reloaded.DocumentObjectKey != "" || reloaded.AddressProofObjectKey != "" {
		t.Fatalf("object keys not cleared: %q %q", reloaded.DocumentObjectKey, reloaded.AddressProofObjectKey)
	}
	if reloaded.IDRejectReason != "document unreadable" {
		t.Fatalf("IDRejectReason = %q", reloaded.IDRejectReason)
	}
}

func TestUpdateApprovalStatus_RejectedPartialDeleteFailure(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := newDocumentHandler(t, db, store)
	seedFreelancer(t, db, "RAM123456", "Ramesh")
	detail := database.FreelancerDetail{
		FreelancerID:          "RAM123456",
		DocumentObjectKey:     "documents/id/x.pdf",
		AddressProofObjectKey: "documents/address/y.pdf",
	}
	if err := db.Create(&detail).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}
	store.objects["documents/id/x.pdf"] = []byte("a")
	store.objects["documents/address/y.pdf"] = []byte("b")
	store.deleteErrFor["documents/id/x.pdf"] = errors.New("storage unavailable")

	c, w := newJSONContext(t, http.MethodPost, "/resumes/updateApprovalStatus", map[string]any{
		"freelancer_id":    "RAM123456",
		"status":           "rejected",
		"id_reject_reason": "document unreadable",
	})
	h.UpdateApprovalStatus(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["aadharResult"] != "failed to delete document" {
		t.Fatalf("aadharResult = %v", body["aadharResult"])
	}
	if body["addressResult"] != "deleted" {
		t.Fatalf("addressResult = %v", body["addressResult"])
	}

	// 一份删除失败不影响另一份，也不回滚审核状态。
	var reloaded database.FreelancerDetail
	if err := db.Where("freelancer_id = ?", "RAM123456").First(&reloaded).Error; err != nil {
		t.Fatalf("reload detail: %v", err)
	}
	if reloaded.DocumentObjectKey != "documents/id/x.pdf" {
		t.Fatalf("failed delete must keep the reference, got %q", reloaded.DocumentObjectKey)
	}
	if reloaded.AddressProofObjectKey != "" {
		t.Fatalf("address key not cleared: %q", reloaded.AddressProofObjectKey)
	}
	if reloaded.IDRejectReason != "document unreadable" {
		t.Fatalf("IDRejectReason = %q", reloaded.IDRejectReason)
	}

	var f database.Freelancer
	if err := db.Where("user_id = ?", "RAM123456").First(&f).Error; err != nil {
		t.Fatalf("reload freelancer: %v", err)
	}
	if f.IsApproved {
		t.Fatal("rejected freelancer must not be approved")
	}
}

func TestUpdateApprovalStatus_UnknownFreelancer(t *testing.T) {
	db := newTestDB(t)
	h := newDocumentHandler(t, db, newFakeObjectStore())

	c, w := newJSONContext(t, http.MethodPost, "/resumes/updateApprovalStatus", map[string]any{
		"freelancer_id": "NOP000000",
		"status":        "accepted",
	})
	h.UpdateApprovalStatus(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateApprovalStatus_InvalidStatus(t *testing.T) {
	db := newTestDB(t)
	h := newDocumentHandler(t, db, newFakeObjectStore())

	c, w := newJSONContext(t, http.MethodPost, "/resumes/updateApprovalStatus", map[string]any{
		"freelancer_id": "RAM123456",
		"status":        "maybe",
	})
	h.UpdateApprovalStatus(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}
