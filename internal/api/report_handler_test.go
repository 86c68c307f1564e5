package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"resumesentry/internal/database"
	"resumesentry/internal/review"
)

func seedSubmissionWithEarning(t *testing.T, db *gorm.DB, freelancerID, status, approval string, earning float64) {
	t.Helper()
	row := database.SubmittedResume{
		ResumeID:       1,
		FreelancerID:   freelancerID,
		Status:         status,
		ApprovalStatus: approval,
		ResumeEarning:  earning,
		SubmissionDate: time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
}

func TestGetResumeStats_CountsByStatus(t *testing.T) {
	db := newTestDB(t)
	h := NewReportHandler(db, nil)

	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSaved, "", 0)
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusAutoSaved, "", 0)
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSubmitted, "", 0)
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusRejected, "", 0)
	seedSubmissionWithEarning(t, db, "OTH123456", review.StatusSubmitted, "", 0)

	c, w := newJSONContext(t, http.MethodPost, "/resumes/getResumeStats", map[string]any{
		"freelancerId": "ram123456",
	})
	h.GetResumeStats(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["total_resumes"].(float64) != 4 {
		t.Fatalf("total_resumes = %v, want 4", body["total_resumes"])
	}
	if body["saved_count"].(float64) != 2 {
		t.Fatalf("saved_count = %v, want 2", body["saved_count"])
	}
	if body["submitted_count"].(float64) != 1 {
		t.Fatalf("submitted_count = %v, want 1", body["submitted_count"])
	}
	if body["rejected_count"].(float64) != 1 {
		t.Fatalf("rejected_count = %v, want 1", body["rejected_count"])
	}
}

func TestGetResumeReportForAdmin(t *testing.T) {
	db := newTestDB(t)
	h := NewReportHandler(db, nil)

	seedFreelancer(t, db, "RAM123456", "Ramesh")
	inactive := seedFreelancer(t, db, "SIT123456", "Sita")
	if err := db.Model(&inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate freelancer: %v", err)
	}

	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSubmitted, "", 0)
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSaved, "", 0)

	c, w := newJSONContext(t, http.MethodGet, "/resumes/GetResumeReportForAdmin", nil)
	h.GetResumeReportForAdmin(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["total_freelancers"].(float64) != 2 {
		t.Fatalf("total_freelancers = %v, want 2", body["total_freelancers"])
	}
	if body["active_freelancers"].(float64) != 1 {
		t.Fatalf("active_freelancers = %v, want 1", body["active_freelancers"])
	}
	if body["total_submissions"].(float64) != 2 {
		t.Fatalf("total_submissions = %v, want 2", body["total_submissions"])
	}
}

func TestGetUserPaymentReport_SumsAcceptedSubmissions(t *testing.T) {
	db := newTestDB(t)
	h := NewReportHandler(db, nil)

	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSubmitted, "accepted", 100)
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusAutoSubmitted, "accepted", 50)
	// 未通过审核或未提交的行不计入。
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSubmitted, "rejected", 75)
	seedSubmissionWithEarning(t, db, "RAM123456", review.StatusSaved, "accepted", 30)
	seedSubmissionWithEarning(t, db, "SIT123456", review.StatusSubmitted, "accepted", 10)

	c, w := newJSONContext(t, http.MethodGet, "/resumes/GetUserPaymentReport", nil)
	h.GetUserPaymentReport(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var payments []struct {
		UserID       string  `json:"userid"`
		TotalPayment float64 `json:"totalPayment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payments); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("got %d rows, want 2", len(payments))
	}
	if payments[0].UserID != "RAM123456" || payments[0].TotalPayment != 150 {
		t.Fatalf("row 0 = %+v", payments[0])
	}
	if payments[1].UserID != "SIT123456" || payments[1].TotalPayment != 10 {
		t.Fatalf("row 1 = %+v", payments[1])
	}
}

func TestGetUserPaymentReport_Empty(t *testing.T) {
	db := newTestDB(t)
	h := NewReportHandler(db, nil)

	c, w := newJSONContext(t, http.MethodGet, "/resumes/GetUserPaymentReport", nil)
	h.GetUserPaymentReport(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "[]" {
		t.Fatalf("body = %q, want empty array", w.Body.String())
	}
}
