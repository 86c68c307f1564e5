package api

import (
	"net/http"
	"testing"

	"resumesentry/internal/database"
)

func TestSaveOrUpdateBankDetails_InsertThenUpdate(t *testing.T) {
	db := newTestDB(t)
	h := NewBankHandler(db, nil)

	c, w := newJSONContext(t, http.MethodPost, "/resumes/saveOrUpdateBankDetails", map[string]any{
		"freelancer_id":  "ram123456",
		"account_number": "1234567890",
		"ifsc_code":      "HDFC0001234",
		"bank_name":      "HDFC",
	})
	h.SaveOrUpdateBankDetails(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var detail database.FreelancerDetail
	if err := db.Where("freelancer_id = ?", "RAM123456").First(&detail).Error; err != nil {
		t.Fatalf("load detail: %v", err)
	}
	if detail.AccountNumber != "1234567890" || detail.BankName != "HDFC" {
		t.Fatalf("fields not saved: %+v", detail)
	}

	c, w = newJSONContext(t, http.MethodPost, "/resumes/saveOrUpdateBankDetails", map[string]any{
		"freelancer_id":  "RAM123456",
		"account_number": "9876543210",
		"ifsc_code":      "ICIC0004321",
		"bank_name":      "ICICI",
	})
	h.SaveOrUpdateBankDetails(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on update got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&database.FreelancerDetail{}).Where("freelancer_id = ?", "RAM123456").Count(&count).Error; err != nil {
		t.Fatalf("count details: %v", err)
	}
	if count != 1 {
		t.Fatalf("detail rows = %d, want 1", count)
	}

	if err := db.Where("freelancer_id = ?", "RAM123456").First(&detail).Error; err != nil {
		t.Fatalf("reload detail: %v", err)
	}
	if detail.BankName != "ICICI" {
		t.Fatalf("BankName = %q, want ICICI", detail.BankName)
	}
}

func TestSaveOrUpdateBankDetails_PreservesDocumentFields(t *testing.T) {
	db := newTestDB(t)
	h := NewBankHandler(db, nil)

	seed := database.FreelancerDetail{
		FreelancerID:      "RAM123456",
		DocumentObjectKey: "documents/id/x.pdf",
		IDType:            "aadhaar",
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}

	c, w := newJSONContext(t, http.MethodPost, "/resumes/saveOrUpdateBankDetails", map[string]any{
		"freelancer_id":  "RAM123456",
		"account_number": "1234567890",
	})
	h.SaveOrUpdateBankDetails(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var detail database.FreelancerDetail
	if err := db.Where("freelancer_id = ?", "RAM123456").First(&detail).Error; err != nil {
		t.Fatalf("reload detail: %v", err)
	}
	if detail.DocumentObjectKey != "documents/id/x.pdf" || detail.IDType != "aadhaar" {
		t.Fatalf("document fields clobbered: %+v", detail)
	}
}

func TestGetBankDetails(t *testing.T) {
	db := newTestDB(t)
	h := NewBankHandler(db, nil)

	seed := database.FreelancerDetail{
		FreelancerID:   "RAM123456",
		AccountNumber:  "1234567890",
		BankName:       "HDFC",
		IDRejectReason: "photo blurred",
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}

	c, w := paramContext(t, http.MethodGet, "/resumes/getBankDetails/RAM123456", nil, "RAM123456")
	h.GetBankDetails(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["account_number"] != "1234567890" {
		t.Fatalf("account_number = %v", body["account_number"])
	}
	if body["id_reject_reason"] != "photo blurred" {
		t.Fatalf("id_reject_reason = %v", body["id_reject_reason"])
	}
}

func TestGetBankDetails_NotFound(t *testing.T) {
	db := newTestDB(t)
	h := NewBankHandler(db, nil)

	c, w := paramContext(t, http.MethodGet, "/resumes/getBankDetails/NOP000000", nil, "NOP000000")
	h.GetBankDetails(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["error"] != "Bank details not found for this freelancer" {
		t.Fatalf("error = %v", body["error"])
	}
}
