package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/codease-contact/internal/entity"
	"github.com/xavierca1/codease-contact/internal/usecase"
)

type MockSubmissionLog struct {
	mock.Mock
}

func (m *MockSubmissionLog) Append(ctx context.Context, row entity.LogRow) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockSubmissionLog) ReadAll(ctx context.Context) ([]entity.LogRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LogRow), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOperator(ctx context.Context, s entity.Submission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockNotifier) ConfirmToSubmitter(ctx context.Context, s entity.Submission) error {
	return m.Called(ctx, s).Error(0)
}

type stubExporter struct {
	err error
}

func (e stubExporter) Export(w io.Writer, rows []entity.LogRow) error {
	if e.err != nil {
		return e.err
	}
	_, err := w.Write([]byte("xlsx"))
	return err
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (l stubLimiter) Allow(context.Context, string) (bool, error) {
	return l.allowed, l.err
}

func newHandler(log *MockSubmissionLog, notifier *MockNotifier, debug bool) *ContactHandler {
	submit := usecase.NewSubmitContactUseCase(log, notifier, nil, usecase.PolicyStrict, nil)
	export := usecase.NewExportSubmissionsUseCase(log, stubExporter{})
	return NewContactHandler(submit, export, nil, debug, nil)
}

func postContact(h *ContactHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

const validBody = `{"name":"A","lastname":"B","email":"a@b.com","subject":"courses","message":"Hi"}`

func TestSubmitSuccess(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyOperator", mock.Anything, mock.Anything).Return(nil)
	notifier.On("ConfirmToSubmitter", mock.Anything, mock.Anything).Return(nil)

	w := postContact(newHandler(log, notifier, false), validBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, msgSent, body["message"])
}

func TestSubmitInvalidJSON(t *testing.T) {
	w := postContact(newHandler(new(MockSubmissionLog), new(MockNotifier), false), "invalid json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidJSON, decode(t, w)["message"])
}

func TestSubmitAcceptsNumericPhone(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.MatchedBy(func(r entity.LogRow) bool {
		return r.Phone == "5551234"
	})).Return(nil).Once()
	notifier.On("NotifyOperator", mock.Anything, mock.Anything).Return(nil)
	notifier.On("ConfirmToSubmitter", mock.Anything, mock.Anything).Return(nil)

	body := `{"name":"A","lastname":"B","email":"a@b.com","phone":5551234,"subject":"courses","message":"Hi"}`
	w := postContact(newHandler(log, notifier, false), body)

	assert.Equal(t, http.StatusOK, w.Code)
	log.AssertExpectations(t)
}

func TestSubmitRejectsObjectField(t *testing.T) {
	log := new(MockSubmissionLog)

	w := postContact(newHandler(log, new(MockNotifier), false), `{"name":{"first":"A"},"lastname":"B"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidJSON, decode(t, w)["message"])
	log.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmitURLEncodedForm(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.MatchedBy(func(r entity.LogRow) bool {
		return r.Name == "Ada" && r.Subject == "Course Information" && r.Message == "Hi there"
	})).Return(nil).Once()
	notifier.On("NotifyOperator", mock.Anything, mock.Anything).Return(nil)
	notifier.On("ConfirmToSubmitter", mock.Anything, mock.Anything).Return(nil)

	form := url.Values{
		"name":     {"Ada"},
		"lastname": {"Lovelace"},
		"email":    {"ada@example.com"},
		"subject":  {"courses"},
		"message":  {"Hi there"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	w := httptest.NewRecorder()
	newHandler(log, notifier, false).Submit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	log.AssertExpectations(t)
}

func TestSubmitMissingMessage(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)

	w := postContact(newHandler(log, notifier, false), `{"name":"A","lastname":"B","email":"a@b.com","subject":"courses"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"message": "Please fill in all required fields"}, decode(t, w))
	log.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyOperator", mock.Anything, mock.Anything)
}

func TestSubmitDeliveryFailureHidesDetail(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyOperator", mock.Anything, mock.Anything).Return(errors.New("535 bad credentials"))

	w := postContact(newHandler(log, notifier, false), validBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, msgFailed, body["message"])
	assert.NotContains(t, body, "error")
}

func TestSubmitDeliveryFailureDebug(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyOperator", mock.Anything, mock.Anything).Return(errors.New("535 bad credentials"))

	w := postContact(newHandler(log, notifier, true), validBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "535 bad credentials")
}

func TestSubmitPersistenceFailure(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))

	w := postContact(newHandler(log, notifier, false), validBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	notifier.AssertNotCalled(t, "NotifyOperator", mock.Anything, mock.Anything)
}

func TestSubmitRateLimited(t *testing.T) {
	log := new(MockSubmissionLog)
	h := newHandler(log, new(MockNotifier), false)
	h.Limiter = stubLimiter{allowed: false}

	w := postContact(h, validBody)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	log.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmitLimiterErrorFailsOpen(t *testing.T) {
	log := new(MockSubmissionLog)
	notifier := new(MockNotifier)
	log.On("Append", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyOperator", mock.Anything, mock.Anything).Return(nil)
	notifier.On("ConfirmToSubmitter", mock.Anything, mock.Anything).Return(nil)
	h := newHandler(log, notifier, false)
	h.Limiter = stubLimiter{err: errors.New("dial tcp: connection refused")}

	w := postContact(h, validBody)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDownloadNotFound(t *testing.T) {
	log := new(MockSubmissionLog)
	log.On("ReadAll", mock.Anything).Return(nil, entity.ErrLogNotFound)
	h := newHandler(log, new(MockNotifier), false)

	w := httptest.NewRecorder()
	h.Download(w, httptest.NewRequest(http.MethodGet, "/contact/download", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgNotFound, decode(t, w)["message"])
}

func TestDownloadAttachment(t *testing.T) {
	log := new(MockSubmissionLog)
	log.On("ReadAll", mock.Anything).Return([]entity.LogRow{{Name: "A"}}, nil)
	h := newHandler(log, new(MockNotifier), false)

	w := httptest.NewRecorder()
	h.Download(w, httptest.NewRequest(http.MethodGet, "/contact/download", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contact_submissions.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", w.Body.String())
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
}

func TestDownloadExportFailure(t *testing.T) {
	log := new(MockSubmissionLog)
	log.On("ReadAll", mock.Anything).Return([]entity.LogRow{{Name: "A"}}, nil)
	submit := usecase.NewSubmitContactUseCase(log, new(MockNotifier), nil, usecase.PolicyStrict, nil)
	export := usecase.NewExportSubmissionsUseCase(log, stubExporter{err: errors.New("zip: write error")})
	h := NewContactHandler(submit, export, nil, false, nil)

	w := httptest.NewRecorder()
	h.Download(w, httptest.NewRequest(http.MethodGet, "/contact/download", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgDownloadError, decode(t, w)["message"])
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
