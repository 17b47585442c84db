package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/middleware"
	"github.com/proximahq/proxima/pkg/observability"
	"github.com/proximahq/proxima/pkg/storage"
)

// FileHandlers serves file upload, download and listing. Any logged-in user
// may use them; no permission code is required.
type FileHandlers struct {
	service       *storage.FileService
	metrics       *observability.Metrics
	maxUploadSize int64
}

// NewFileHandlers creates new file handlers
func NewFileHandlers(service *storage.FileService, metrics *observability.Metrics, maxUploadSize int64) *FileHandlers {
	return &FileHandlers{service: service, metrics: metrics, maxUploadSize: maxUploadSize}
}

// RegisterRoutes mounts the file routes behind the login guard.
func (h *FileHandlers) RegisterRoutes(r *mux.Router, authn *middleware.Authenticator) {
	r.Handle("/api/file/upload", authn.RequireLogin(http.HandlerFunc(h.upload))).Methods("POST")
	r.Handle("/api/file/download/{id:[0-9]+}", authn.RequireLogin(http.HandlerFunc(h.download))).Methods("GET")
	r.Handle("/api/file/page", authn.RequireLogin(http.HandlerFunc(h.page))).Methods("GET")
	r.Handle("/api/file/delete/{id:[0-9]+}", authn.RequireLogin(http.HandlerFunc(h.delete))).Methods("DELETE")
}

// upload accepts a multipart form and stores every part named "file". All
// stored records are returned together.
func (h *FileHandlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.countUpload("failure")
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}

	var records []*storage.FileRecord
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			part, err := header.Open()
			if err != nil {
				h.countUpload("failure")
				httputil.WriteBadRequest(w, "unreadable file part")
				return
			}

			record, err := h.service.Upload(r.Context(), part, header.Filename, header.Header.Get("Content-Type"))
			part.Close()
			if err != nil {
				h.countUpload("failure")
				writeServiceError(w, r, err)
				return
			}

			h.countUpload("success")
			if h.metrics != nil {
				h.metrics.UploadSizeBytes.Observe(float64(record.Size))
			}
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		httputil.WriteBadRequest(w, "no file parts in request")
		return
	}
	httputil.WriteSuccess(w, records)
}

func (h *FileHandlers) download(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	record, rc, err := h.service.Download(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := record.ContentType
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", record.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	if _, err := io.Copy(w, rc); err != nil {
		observability.FromContext(r.Context()).WithError(err).Warn("download interrupted")
	}
}

func (h *FileHandlers) page(w http.ResponseWriter, r *http.Request) {
	current, size := httputil.ParsePagination(r)

	page, err := h.service.GetFileList(r.Context(), current, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, page)
}

func (h *FileHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteFile(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, nil)
}

func (h *FileHandlers) countUpload(status string) {
	if h.metrics != nil {
		h.metrics.UploadsTotal.WithLabelValues(status).Inc()
	}
}
