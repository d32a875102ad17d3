package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/extract-api/internal/api/shared"
	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/service"
)

// ExtractHandler handles extraction submission requests.
type ExtractHandler struct {
	service         *service.ExtractionService
	maxUploadBytes  int64
	defaultLanguage string
	logger          *slog.Logger
}

// NewExtractHandler creates a new ExtractHandler. maxUploadBytes caps the
// accepted multipart body size; defaultLanguage is the OCR language used when
// a request does not name one.
func NewExtractHandler(svc *service.ExtractionService, maxUploadBytes int64, defaultLanguage string, logger *slog.Logger) *ExtractHandler {
	return &ExtractHandler{
		service:         svc,
		maxUploadBytes:  maxUploadBytes,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// ExtractFile handles POST /extract requests: a multipart PDF upload plus
// form-encoded extraction options. The task id comes back immediately; the
// extraction itself runs in the background.
func (h *ExtractHandler) ExtractFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A file or pdf_url is required")
		return
	}
	defer func() { _ = file.Close() }()

	language := r.FormValue("language")
	if language == "" {
		language = h.defaultLanguage
	}
	opts, err := parseOptions(
		r.FormValue("extraction_type"),
		r.FormValue("include_images") == "true",
		r.FormValue("include_metadata") == "true",
		r.FormValue("fast_mode") == "true",
		r.FormValue("use_cache") != "false",
		language,
	)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	taskID, err := h.service.SubmitUpload(r.Context(), file, header.Filename, opts)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitResponse{TaskID: taskID})
}

// ExtractURL handles POST /extract-url requests with a JSON body naming the
// remote document.
func (h *ExtractHandler) ExtractURL(w http.ResponseWriter, r *http.Request) {
	var req ExtractURLRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: pdf_url must be a valid URL")
		return
	}

	useCache := req.UseCache == nil || *req.UseCache
	opts, err := parseOptions(req.ExtractionType, req.IncludeImages, req.IncludeMetadata,
		req.FastMode, useCache, h.defaultLanguage)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	taskID, err := h.service.SubmitURL(r.Context(), req.PDFURL, opts)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitResponse{TaskID: taskID})
}

// parseOptions assembles ExtractionOptions from client-supplied values.
func parseOptions(extractionType string, includeImages, includeMetadata, fastMode, useCache bool, language string) (domain.ExtractionOptions, error) {
	mode, err := domain.ParseExtractionType(extractionType)
	if err != nil {
		return domain.ExtractionOptions{}, err
	}
	return domain.ExtractionOptions{
		Type:            mode,
		IncludeImages:   includeImages,
		IncludeMetadata: includeMetadata,
		FastMode:        fastMode,
		UseCache:        useCache,
		Language:        language,
	}, nil
}
