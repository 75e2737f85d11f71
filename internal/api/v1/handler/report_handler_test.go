package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"complipilot/internal/middleware"
	"complipilot/internal/model"
	"complipilot/internal/pdf"
	"complipilot/internal/service"
	"complipilot/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handler-test-secret"

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, util.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// fakeReportSvc is an in-memory ReportService with the repository's
// ownership semantics: cross-user reads come back nil, not an error.
type fakeReportSvc struct {
	nextID  int
	reports map[string]*model.ComplianceReport
	listErr error
}

func newFakeReportSvc() *fakeReportSvc {
	return &fakeReportSvc{reports: make(map[string]*model.ComplianceReport)}
}

func (f *fakeReportSvc) SaveReport(_ context.Context, userID string, rep *model.ComplianceReport) (*model.ComplianceReport, error) {
	f.nextID++
	saved := *rep
	saved.ID = fmt.Sprintf("rep-%d", f.nextID)
	saved.UserID = userID
	saved.CreatedAt = time.Now().UTC()
	f.reports[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeReportSvc) ListReports(_ context.Context, userID, toolkitCode string) ([]model.ComplianceReport, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.ComplianceReport
	for _, rep := range f.reports {
		if rep.UserID == userID && rep.ToolkitCode == toolkitCode {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (f *fakeReportSvc) GetReport(_ context.Context, id, userID string) (*model.ComplianceReport, error) {
	rep, ok := f.reports[id]
	if !ok || rep.UserID != userID {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (f *fakeReportSvc) DeleteReport(_ context.Context, id, userID string) (bool, error) {
	rep, ok := f.reports[id]
	if !ok || rep.UserID != userID {
		return false, nil
	}
	delete(f.reports, id)
	return true, nil
}

type fakeExportSvc struct {
	archiveURL string
	exportErr  error
}

func (f *fakeExportSvc) ExportReport(_ context.Context, rep *model.ComplianceReport) ([]byte, string, error) {
	return []byte("%PDF-1.4 " + rep.ID), f.archiveURL, nil
}

func (f *fakeExportSvc) ExportReports(_ context.Context, reports []model.ComplianceReport, _ string) ([]byte, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return []byte(fmt.Sprintf("%%PDF-1.4 bundle %d", len(reports))), nil
}

func newReportMux(svc service.ReportService, exp service.ExportService) *http.ServeMux {
	logger := zerolog.Nop()
	h := NewReportHandler(svc, exp, validator.New(validator.WithRequiredStructEnabled()), false, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.AuthMiddleware(testJWTSecret, logger))
	return mux
}

func doAuthed(mux *http.ServeMux, method, target, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func saveBody(t *testing.T, name string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"toolkit_code": "complipilot",
		"name":         name,
		"entity_name":  "Acme LLC",
		"html_content": "<h1>" + name + "</h1>",
	})
	require.NoError(t, err)
	return body
}

func TestSaveAndGetReport(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})
	token := signToken(t, "user-a")

	rec := doAuthed(mux, http.MethodPost, "/reports/save", token, saveBody(t, "Annual Report"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "user-a", saved["user_id"])
	id, _ := saved["id"].(string)
	require.NotEmpty(t, id)

	rec = doAuthed(mux, http.MethodGet, "/reports/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Annual Report", got["name"])
}

func TestReportRoutesRejectMissingToken(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})

	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/reports/save"},
		{http.MethodGet, "/reports/list?toolkit=complipilot"},
		{http.MethodGet, "/reports/rep-1"},
		{http.MethodDelete, "/reports/rep-1"},
		{http.MethodPost, "/reports/rep-1/export"},
	} {
		rec := doAuthed(mux, tc.method, tc.target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.target)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), tc.target)
		assert.Contains(t, rec.Body.String(), `"error"`, tc.target)
	}
}

func TestReportRoutesRejectBadToken(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})

	rec := doAuthed(mux, http.MethodGet, "/reports/list?toolkit=complipilot", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/reports/list?toolkit=complipilot", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveReportValidation(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})
	token := signToken(t, "user-a")

	rec := doAuthed(mux, http.MethodPost, "/reports/save", token, []byte(`{"name":"x"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doAuthed(mux, http.MethodPost, "/reports/save", token, []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantIsolation(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})
	tokenA := signToken(t, "user-a")
	tokenB := signToken(t, "user-b")

	rec := doAuthed(mux, http.MethodPost, "/reports/save", tokenA, saveBody(t, "A's report"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	id := saved["id"].(string)

	// Another user's id behaves exactly like a missing one.
	rec = doAuthed(mux, http.MethodGet, "/reports/"+id, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Report not found")

	rec = doAuthed(mux, http.MethodDelete, "/reports/"+id, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doAuthed(mux, http.MethodGet, "/reports/list?toolkit=complipilot", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	// The owner still sees and can delete it.
	rec = doAuthed(mux, http.MethodDelete, "/reports/"+id, tokenA, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doAuthed(mux, http.MethodGet, "/reports/"+id, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReportsRequiresToolkit(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})
	rec := doAuthed(mux, http.MethodGet, "/reports/list", signToken(t, "user-a"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "toolkit")
}

func TestExportReportStreamsPDF(t *testing.T) {
	svc := newFakeReportSvc()
	mux := newReportMux(svc, &fakeExportSvc{archiveURL: "https://example.com/signed"})
	token := signToken(t, "user-a")

	rec := doAuthed(mux, http.MethodPost, "/reports/save", token, saveBody(t, "Export me"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	id := saved["id"].(string)

	rec = doAuthed(mux, http.MethodPost, "/reports/"+id+"/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Export me.pdf")
	assert.Equal(t, "https://example.com/signed", rec.Header().Get("X-Archive-Url"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestExportReportsEmpty(t *testing.T) {
	mux := newReportMux(newFakeReportSvc(), &fakeExportSvc{})
	rec := doAuthed(mux, http.MethodPost, "/reports/export?toolkit=complipilot", signToken(t, "user-a"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No reports to export")
}

func TestExportReportsErrorTaxonomy(t *testing.T) {
	token := signToken(t, "user-a")

	// A rejected mode is the caller's fault.
	svc := newFakeReportSvc()
	mux := newReportMux(svc, &fakeExportSvc{exportErr: fmt.Errorf("%w: %q", pdf.ErrUnknownMode, "newest")})
	rec := doAuthed(mux, http.MethodPost, "/reports/save", token, saveBody(t, "A report"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doAuthed(mux, http.MethodPost, "/reports/export?toolkit=complipilot&mode=newest", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown export mode")

	// A render failure is not.
	mux = newReportMux(svc, &fakeExportSvc{exportErr: errors.New("write failed")})
	rec = doAuthed(mux, http.MethodPost, "/reports/export?toolkit=complipilot", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to export reports")
}
