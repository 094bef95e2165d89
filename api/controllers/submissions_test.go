package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/venuecast/venuecast-backend/internal/submissions"
	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
)

type stubSubmissionsService struct {
	created *models.Submission
	input   submissions.CreateInput
	err     error
	pending []models.Submission
	checked []models.Submission
	deleted []string
	cleared int64
}

func (s *stubSubmissionsService) Create(ctx context.Context, input submissions.CreateInput) (*models.Submission, error) {
	s.input = input
	return s.created, s.err
}

func (s *stubSubmissionsService) ListPending(ctx context.Context) ([]models.Submission, error) {
	return s.pending, s.err
}

func (s *stubSubmissionsService) ListChecked(ctx context.Context, limit int) ([]models.Submission, error) {
	return s.checked, s.err
}

func (s *stubSubmissionsService) Approve(ctx context.Context, id string) (*models.Submission, error) {
	return s.created, s.err
}

func (s *stubSubmissionsService) Reject(ctx context.Context, id string) (*models.Submission, error) {
	return s.created, s.err
}

func (s *stubSubmissionsService) DeletePending(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubSubmissionsService) DeleteHistoryEntry(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubSubmissionsService) ClearHistory(ctx context.Context) (int64, error) {
	return s.cleared, s.err
}

type stubUploader struct {
	path string
	err  error
}

func (s stubUploader) SaveMultipart(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return s.path, s.err
}

func TestSubmissionCreateText(t *testing.T) {
	svc := &stubSubmissionsService{created: &models.Submission{ID: "sub-1", Kind: enums.SubmissionKindText}}
	handler := SubmissionCreate(svc, nil)

	body := []byte(`{"kind":"text","text":"happy birthday ana","textColor":"#ff00aa","sender":"Carlos"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.Kind != enums.SubmissionKindText || svc.input.Sender != "Carlos" {
		t.Fatalf("input not forwarded: %+v", svc.input)
	}
}

func TestSubmissionCreateRejectsImageKind(t *testing.T) {
	// Image submissions must go through the multipart endpoint.
	handler := SubmissionCreate(&stubSubmissionsService{}, nil)

	body := []byte(`{"kind":"image","sender":"Carlos"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmissionCreatePropagatesValidationError(t *testing.T) {
	svc := &stubSubmissionsService{err: pkgerrors.New(pkgerrors.CodeValidation, "text is required")}
	handler := SubmissionCreate(svc, nil)

	body := []byte(`{"kind":"text"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func TestSubmissionUploadSavesFileAndForwardsPath(t *testing.T) {
	svc := &stubSubmissionsService{created: &models.Submission{ID: "sub-2", Kind: enums.SubmissionKindImage}}
	handler := SubmissionUpload(svc, stubUploader{path: "1717272000000-selfie.jpg"}, 25, nil)

	body, contentType := multipartBody(t, map[string]string{
		"sender":         "Dani",
		"displaySeconds": "12",
		"price":          "5.50",
		"composed":       "true",
	}, "file", "selfie.jpg")

	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions/image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.FilePath == nil || *svc.input.FilePath != "1717272000000-selfie.jpg" {
		t.Fatalf("file path not forwarded: %+v", svc.input)
	}
	if svc.input.DisplaySeconds != 12 || !svc.input.Composed {
		t.Fatalf("form fields not parsed: %+v", svc.input)
	}
	if svc.input.Price.StringFixed(2) != "5.50" {
		t.Fatalf("price not parsed: %s", svc.input.Price)
	}
}

func TestSubmissionUploadRequiresFile(t *testing.T) {
	handler := SubmissionUpload(&stubSubmissionsService{}, stubUploader{}, 25, nil)

	body, contentType := multipartBody(t, map[string]string{"sender": "Dani"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions/image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmissionUploadRejectsBadDisplaySeconds(t *testing.T) {
	handler := SubmissionUpload(&stubSubmissionsService{}, stubUploader{}, 25, nil)

	body, contentType := multipartBody(t, map[string]string{"displaySeconds": "-3"}, "file", "a.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions/image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestQueueListReturnsPending(t *testing.T) {
	svc := &stubSubmissionsService{pending: []models.Submission{{ID: "a"}, {ID: "b"}}}
	handler := QueueList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []models.Submission `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Data[0].ID != "a" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func newDispositionRouter(svc submissions.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/queue/{id}/approve", QueueApprove(svc, nil))
	r.Post("/api/v1/queue/{id}/reject", QueueReject(svc, nil))
	r.Delete("/api/v1/queue/{id}", QueueDelete(svc, nil))
	r.Delete("/api/v1/history/{id}", HistoryDelete(svc, nil))
	return r
}

func TestQueueApproveMapsNotFound(t *testing.T) {
	svc := &stubSubmissionsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "submission already dispositioned")}
	router := newDispositionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/sub-404/approve", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestQueueDeleteForwardsID(t *testing.T) {
	svc := &stubSubmissionsService{}
	router := newDispositionRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/queue/sub-9", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "sub-9" {
		t.Fatalf("id not forwarded: %+v", svc.deleted)
	}
}

func TestHistoryClearReportsRemovedCount(t *testing.T) {
	svc := &stubSubmissionsService{cleared: 7}
	handler := HistoryClear(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["removed"] != 7 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestHistoryListValidatesLimit(t *testing.T) {
	handler := HistoryList(&stubSubmissionsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=-1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
