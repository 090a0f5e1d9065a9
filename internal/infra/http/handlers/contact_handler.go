package handlers

import (
	"bytes"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xavierca1/codease-contact/internal/infra/http/middleware"
	"github.com/xavierca1/codease-contact/internal/infra/ratelimit"
	"github.com/xavierca1/codease-contact/internal/infra/sheet"
	"github.com/xavierca1/codease-contact/internal/usecase"
)

const (
	msgSent          = "Message sent successfully! We will get back to you soon."
	msgFailed        = "Failed to send message. Please try again or contact us directly."
	msgInvalidJSON   = "Invalid JSON"
	msgTooMany       = "Too many requests. Please try again later."
	msgDownloadError = "Error downloading file"
	msgNotFound      = "No contact submissions found"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxBodyBytes    = 64 << 10
)

type ContactHandler struct {
	SubmitUC *usecase.SubmitContactUseCase
	ExportUC *usecase.ExportSubmissionsUseCase
	Limiter  ratelimit.Limiter
	// Debug echoes internal error text in 500 responses.
	Debug  bool
	Logger *zap.Logger
}

func NewContactHandler(
	submitUC *usecase.SubmitContactUseCase,
	exportUC *usecase.ExportSubmissionsUseCase,
	limiter ratelimit.Limiter,
	debug bool,
	logger *zap.Logger,
) *ContactHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactHandler{
		SubmitUC: submitUC,
		ExportUC: exportUC,
		Limiter:  limiter,
		Debug:    debug,
		Logger:   logger,
	}
}

// Submit handles POST /contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil {
		allowed, err := h.Limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			// Fail open.
			h.Logger.Warn("rate limiter unavailable", zap.Error(err))
			middleware.RecordIntegrationError("ratelimit")
		} else if !allowed {
			middleware.RecordSubmission("rate_limited")
			writeJSON(w, http.StatusTooManyRequests, ContactResponse{Message: msgTooMany})
			return
		}
	}

	input, err := decodeContact(w, r)
	if err != nil {
		middleware.RecordSubmission("invalid")
		writeJSON(w, http.StatusBadRequest, ContactResponse{Message: msgInvalidJSON})
		return
	}

	if _, err := h.SubmitUC.Execute(r.Context(), input); err != nil {
		h.writeSubmitError(w, err)
		return
	}

	middleware.RecordSubmission("success")
	writeJSON(w, http.StatusOK, ContactResponse{Success: true, Message: msgSent})
}

func (h *ContactHandler) writeSubmitError(w http.ResponseWriter, err error) {
	code := usecase.ErrorCode(err)

	if usecase.IsDomainError(err) {
		middleware.RecordSubmission("invalid")
		writeJSON(w, http.StatusBadRequest, ContactResponse{Message: err.Error()})
		return
	}

	switch code {
	case usecase.CodeDeliveryFailure:
		middleware.RecordIntegrationError("smtp")
	case usecase.CodePersistenceFailure:
		middleware.RecordIntegrationError("submission_log")
	}
	middleware.RecordSubmission("failed")
	h.Logger.Error("error processing contact form", zap.String("code", code), zap.Error(err))

	resp := ContactResponse{Message: msgFailed}
	if h.Debug {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// Download handles GET /contact/download. The workbook is buffered in memory
// so a failure never leaves a half-written attachment.
func (h *ContactHandler) Download(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.ExportUC.Execute(r.Context(), &buf); err != nil {
		if usecase.ErrorCode(err) == usecase.CodeNotFound {
			writeJSON(w, http.StatusNotFound, ContactResponse{Message: msgNotFound})
			return
		}
		h.Logger.Error("error downloading submissions", zap.Error(err))
		resp := ContactResponse{Message: msgDownloadError}
		if h.Debug {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+sheet.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Logger.Debug("client went away during download", zap.Error(err))
	}
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
