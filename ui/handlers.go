package ui

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"jprofile/adapters/excel"
	"jprofile/adapters/report"
	"jprofile/domain/dataset"
	"jprofile/internal/errors"
)

// errorResponse is the JSON body of every failed API call
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": report.Formats()})
}

// handleProfile profiles an uploaded dataset. The body is either a multipart
// form with a "file" field or raw delimited text.
func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(a.config.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	ds, err := a.readUpload(r, maxBytes)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	format := report.FormatJSON
	if raw := r.FormValue("format"); raw != "" {
		if format, err = report.ParseFormat(raw); err != nil {
			a.writeError(w, r, err)
			return
		}
	}

	service := a.service
	if raw := r.FormValue("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top < 1 {
			a.writeError(w, r, errors.InvalidInput(fmt.Sprintf("top must be a positive integer, got %q", raw)))
			return
		}
		service = service.WithTopFrequencyLimit(top)
	}

	set, err := service.ProfileDataset(r.Context(), ds)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, set, format); err != nil {
		a.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format.Binary() {
		name := strings.TrimSuffix(ds.Name, filepath.Ext(ds.Name)) + "_profile" + format.Extension()
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("failed to write response", "error", err)
	}
}

// readUpload loads the request's dataset
func (a *App) readUpload(r *http.Request, maxBytes int64) (*dataset.Dataset, error) {
	config := a.config.Reader

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, uploadError(err)
		}
		if sheet := r.FormValue("sheet"); sheet != "" {
			config.Sheet = sheet
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, errors.InvalidInput("multipart field \"file\" is required")
		}
		defer file.Close()

		fileType, err := excel.DetectFileType(header.Filename)
		if err != nil {
			return nil, err
		}
		reader, err := excel.NewStreamReader(header.Filename, fileType, config, a.logger)
		if err != nil {
			return nil, err
		}
		ds, err := reader.Read(r.Context(), file)
		return ds, uploadError(err)
	}

	if sheet := r.URL.Query().Get("sheet"); sheet != "" {
		config.Sheet = sheet
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}

	fileType := excel.FileTypeCSV
	switch mediaType {
	case "text/tab-separated-values":
		fileType = excel.FileTypeTSV
	case report.FormatXLSX.ContentType():
		fileType = excel.FileTypeXLSX
	}

	reader, err := excel.NewStreamReader(name, fileType, config, a.logger)
	if err != nil {
		return nil, err
	}
	ds, err := reader.Read(r.Context(), r.Body)
	return ds, uploadError(err)
}

// uploadError flags bodies over the size limit
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.New(codeTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit))
	}
	if err != nil && !errors.IsAppError(err) {
		return errors.Wrap(errors.InvalidInput(err.Error()), "failed to read upload")
	}
	return err
}

// codeTooLarge is the error code of uploads over the size limit
const codeTooLarge = "PAYLOAD_TOO_LARGE"

// statusForCode maps application error codes to HTTP statuses
func statusForCode(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeUnsupportedFormat,
		errors.CodeCategoryMismatch, errors.CodeUnsupportedStorageKind:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case codeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "UNKNOWN" {
		code = errors.CodeInternalError
	}
	status := statusForCode(code)

	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "path", r.URL.Path, "code", code, "error", err)
	} else {
		a.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_, _ = io.WriteString(w, `{"error":"encoding failed","code":"INTERNAL_ERROR"}`)
	}
}
