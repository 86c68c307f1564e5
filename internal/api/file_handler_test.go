package api

import (
	"net/http"
	"strconv"
	"testing"

	"resumesentry/internal/database"
)

func TestDownloadResume_StreamsPDF(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := NewFileHandler(db, store, nil)

	tpl := database.Resume{ResumeName: "template.pdf", ObjectKey: "resumes/bulk/template.pdf"}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("seed resume: %v", err)
	}
	store.objects["resumes/bulk/template.pdf"] = []byte("%PDF-1.4 body")

	c, w := newJSONContext(t, http.MethodGet, "/resumes/download/1", nil)
	c.Params = append(c.Params, paramPair("resume_id", strconv.Itoa(int(tpl.ID))))
	h.DownloadResume(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `inline; filename="template.pdf"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Length"); got != strconv.Itoa(len("%PDF-1.4 body")) {
		t.Fatalf("Content-Length = %q", got)
	}
	if w.Body.String() != "%PDF-1.4 body" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestDownloadResume_UnknownResume(t *testing.T) {
	db := newTestDB(t)
	h := NewFileHandler(db, newFakeObjectStore(), nil)

	c, w := newJSONContext(t, http.MethodGet, "/resumes/download/99", nil)
	c.Params = append(c.Params, paramPair("resume_id", "99"))
	h.DownloadResume(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDownloadResume_MissingObject(t *testing.T) {
	db := newTestDB(t)
	h := NewFileHandler(db, newFakeObjectStore(), nil)

	tpl := database.Resume{ResumeName: "gone.pdf", ObjectKey: "resumes/bulk/gone.pdf"}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("seed resume: %v", err)
	}

	c, w := newJSONContext(t, http.MethodGet, "/resumes/download/1", nil)
	c.Params = append(c.Params, paramPair("resume_id", strconv.Itoa(int(tpl.ID))))
	h.DownloadResume(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDownloadAadharCard(t *testing.T) {
	db := newTestDB(t)
	store := newFakeObjectStore()
	h := NewFileHandler(db, store, nil)

	detail := database.FreelancerDetail{
		FreelancerID:      "RAM123456",
		DocumentObjectKey: "documents/id/aadhaar.pdf",
	}
	if err := db.Create(&detail).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}
	store.objects["documents/id/aadhaar.pdf"] = []byte("%PDF-aadhaar")

	c, w := paramContext(t, http.MethodGet, "/resumes/downloadAadharCard/RAM123456", nil, "RAM123456")
	h.DownloadAadharCard(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != `inline; filename="AadharCard-RAM123456.pdf"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
}

func TestDownloadAadharCard_NoDocument(t *testing.T) {
	db := newTestDB(t)
	h := NewFileHandler(db, newFakeObjectStore(), nil)

	detail := database.FreelancerDetail{FreelancerID: "RAM123456"}
	if err := db.Create(&detail).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}

	c, w := paramContext(t, http.MethodGet, "/resumes/downloadAadharCard/RAM123456", nil, "RAM123456")
	h.DownloadAadharCard(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}
