package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// DefaultMaxUploadMemory is the part of a multipart upload kept in memory;
// the rest spills to temp files.
const DefaultMaxUploadMemory int64 = 32 << 20

// OperatorHeader carries the name of the user performing a change.
const OperatorHeader = "X-Username"

// FilesHandler serves the kafka file admin API
type FilesHandler struct {
	registry        kafkafile.Registry
	clusters        ClusterNameResolver
	logger          *slog.Logger
	maxUploadMemory int64
}

// HandlerOption configures a FilesHandler
type HandlerOption func(*FilesHandler)

// WithClusterNameResolver sets the resolver used to name clusters in list responses
func WithClusterNameResolver(resolver ClusterNameResolver) HandlerOption {
	return func(h *FilesHandler) {
		h.clusters = resolver
	}
}

// WithHandlerLogger sets the logger
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *FilesHandler) {
		h.logger = logger
	}
}

func NewFilesHandler(registry kafkafile.Registry, opts ...HandlerOption) *FilesHandler {
	h := &FilesHandler{
		registry:        registry,
		clusters:        StaticClusterNames{},
		logger:          slog.Default(),
		maxUploadMemory: DefaultMaxUploadMemory,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "kafka_files_api")
	return h
}

// Routes returns the router for kafka file endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/enums", h.Enums)
	r.Get("/", h.ListFiles)
	r.Post("/", h.SaveFile)
	r.Delete("/", h.DeleteFile)
	r.Get("/{fileId}/config-files", h.PreviewFile)
	return r
}

// EnumsResponse lists the static enumerations used by clients
type EnumsResponse struct {
	FileEnum    []kafkafile.FileTypeInfo    `json:"fileEnum"`
	StorageEnum []kafkafile.StorageKindInfo `json:"storageEnum"`
}

// FileSummary is a file record as shown in list responses
type FileSummary struct {
	ID              int64     `json:"id"`
	ClusterID       int64     `json:"clusterId"`
	ClusterName     string    `json:"clusterName,omitempty"`
	FileName        string    `json:"fileName"`
	FileMd5         string    `json:"fileMd5"`
	FileType        int       `json:"fileType"`
	FileTypeMessage string    `json:"fileTypeMessage"`
	Description     string    `json:"description"`
	Operator        string    `json:"operator"`
	DownloadURL     string    `json:"downloadUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Enums returns the known file types and storage kinds
func (h *FilesHandler) Enums(w http.ResponseWriter, r *http.Request) {
	renderSuccess(w, r, EnumsResponse{
		FileEnum:    kafkafile.FileTypes(),
		StorageEnum: kafkafile.StorageKinds(),
	})
}

// SaveFile creates a file, or replaces one when the modify field is true.
func (h *FilesHandler) SaveFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil {
		h.logger.Warn("failed to parse multipart form", "error", err)
		renderParamError(w, r, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := parseFileRequest(r)
	if err != nil {
		renderParamError(w, r, err.Error())
		return
	}

	file, _, err := r.FormFile("uploadFile")
	if err != nil {
		renderParamError(w, r, "uploadFile is required")
		return
	}
	defer file.Close()
	req.Content = file

	operator := strings.TrimSpace(r.Header.Get(OperatorHeader))
	status := h.registry.Save(r.Context(), req, operator)
	if !status.OK() {
		h.logger.Warn("save kafka file rejected",
			"file_name", req.FileName, "modify", req.Modify, "status", status.String())
	}
	renderStatus(w, r, status, nil)
}

func parseFileRequest(r *http.Request) (*kafkafile.FileRequest, error) {
	req := &kafkafile.FileRequest{
		ClusterID:   kafkafile.NoCluster,
		FileName:    strings.TrimSpace(r.FormValue("fileName")),
		FileMd5:     strings.TrimSpace(r.FormValue("fileMd5")),
		Description: r.FormValue("description"),
	}

	if v := r.FormValue("fileType"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return nil, errInvalidField("fileType")
		}
		req.FileType = &code
	}
	if v := r.FormValue("clusterId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errInvalidField("clusterId")
		}
		req.ClusterID = id
	}
	if v := r.FormValue("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errInvalidField("id")
		}
		req.ID = id
	}
	if v := r.FormValue("modify"); v != "" {
		modify, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errInvalidField("modify")
		}
		req.Modify = modify
	}

	return req, nil
}

type fieldError string

func (e fieldError) Error() string { return "invalid " + string(e) }

func errInvalidField(name string) error { return fieldError(name) }

// DeleteFile removes the file record named by the id query parameter
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		renderParamError(w, r, "invalid id")
		return
	}

	renderStatus(w, r, h.registry.Delete(r.Context(), id), nil)
}

// ListFiles returns every registered file
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	records := h.registry.List(r.Context())
	baseURL := h.registry.DownloadBaseURL()

	summaries := make([]FileSummary, 0, len(records))
	for _, record := range records {
		summary := FileSummary{
			ID:              record.ID,
			ClusterID:       record.ClusterID,
			FileName:        record.FileName,
			FileMd5:         record.FileMd5,
			FileType:        record.FileType.Code(),
			FileTypeMessage: record.FileType.Message(),
			Description:     record.Description,
			Operator:        record.Operator,
			DownloadURL:     baseURL + kafkafile.ObjectKey(record.FileName, record.FileMd5),
			CreatedAt:       record.CreatedAt,
			UpdatedAt:       record.UpdatedAt,
		}
		if record.ClusterID != kafkafile.NoCluster {
			if name, ok := h.clusters.ClusterName(r.Context(), record.ClusterID); ok {
				summary.ClusterName = name
			}
		}
		summaries = append(summaries, summary)
	}

	renderSuccess(w, r, summaries)
}

// PreviewFile returns the text content of a config file
func (h *FilesHandler) PreviewFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "fileId"), 10, 64)
	if err != nil || id <= 0 {
		renderParamError(w, r, "invalid fileId")
		return
	}

	content, status := h.registry.DownloadForPreview(r.Context(), id)
	if !status.OK() {
		renderStatus(w, r, status, nil)
		return
	}
	renderSuccess(w, r, content)
}
