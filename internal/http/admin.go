package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/links"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/pages"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const (
	defaultAdminBasePath = "/api/admin"
	adminLoginPath       = "/admin/login"
	adminHomePath        = "/admin"
)

// AdminAPI wires the editing endpoints to the admin pipeline and version history.
type AdminAPI struct {
	basePath string
	content  pages.Service
	pipeline *admin.Pipeline
	versions versions.Service
	links    *links.Validator
	logger   interfaces.Logger
}

// AdminOption configures the admin API.
type AdminOption func(*AdminAPI)

// WithBasePath overrides the admin base path.
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if strings.TrimSpace(path) != "" {
			api.basePath = path
		}
	}
}

// WithContentService sets the content service used for reads and cache control.
func WithContentService(svc pages.Service) AdminOption {
	return func(api *AdminAPI) {
		api.content = svc
	}
}

// WithPipeline sets the save pipeline.
func WithPipeline(pipeline *admin.Pipeline) AdminOption {
	return func(api *AdminAPI) {
		api.pipeline = pipeline
	}
}

// WithVersionService sets the version history service.
func WithVersionService(svc versions.Service) AdminOption {
	return func(api *AdminAPI) {
		api.versions = svc
	}
}

// WithLinkValidator sets the validator behind the links report.
func WithLinkValidator(validator *links.Validator) AdminOption {
	return func(api *AdminAPI) {
		if validator != nil {
			api.links = validator
		}
	}
}

// WithLogger sets the admin API logger.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// NewAdminAPI builds the admin API with the supplied options.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: defaultAdminBasePath,
		links:    links.NewValidator(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// Register attaches the admin routes to mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if api == nil || mux == nil {
		return nil
	}
	page := joinPath(api.basePath, "content/{pageId}")
	mux.HandleFunc("POST "+page, api.handleSave)
	mux.HandleFunc("GET "+page+"/versions", api.handleHistory)
	mux.HandleFunc("GET "+page+"/versions/latest", api.handleLatest)
	mux.HandleFunc("GET "+page+"/versions/{version}", api.handleVersion)
	mux.HandleFunc("GET "+page+"/diff", api.handleDiff)
	mux.HandleFunc("GET "+page+"/links", api.handleLinks)
	mux.HandleFunc("POST "+joinPath(api.basePath, "cache/clear"), api.handleCacheClear)
	mux.HandleFunc("GET "+adminLoginPath, api.handleLogin)
	return nil
}

// saveRequest is the editor payload. Without field, content is a nested object (or dotted keys)
// whose leaves are patched one by one.
type saveRequest struct {
	Language string `json:"language"`
	Field    string `json:"field,omitempty"`
	Content  any    `json:"content"`
	Author   string `json:"author,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

type saveResponse struct {
	OK           bool                           `json:"ok"`
	Version      int                            `json:"version,omitempty"`
	LinkWarnings []content.LinkIntegrityWarning `json:"linkWarnings,omitempty"`
}

func (api *AdminAPI) handleSave(w http.ResponseWriter, r *http.Request) {
	if api.pipeline == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var body saveRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	locale, ok := content.ParseLanguage(body.Language)
	if !ok {
		badRequest(w, "language must be one of en, es")
		return
	}

	req := admin.SaveFieldsRequest{
		PageID:  r.PathValue("pageId"),
		Locale:  locale,
		Author:  strings.TrimSpace(body.Author),
		Comment: strings.TrimSpace(body.Comment),
	}
	if field := strings.TrimSpace(body.Field); field != "" {
		req.Fields = []admin.FieldPatch{{Field: field, Value: body.Content}}
	} else {
		fields, ok := body.Content.(map[string]any)
		if !ok || len(fields) == 0 {
			badRequest(w, "content must be an object of field paths when field is omitted")
			return
		}
		req.Fields = admin.FlattenFields(fields)
	}

	result, err := api.pipeline.SaveFields(r.Context(), req)
	if err != nil {
		status, payload := mapError(err)
		if status >= http.StatusInternalServerError {
			api.logger.Error("admin save failed", "page_id", req.PageID, "locale", locale, "error", err)
		}
		writeJSON(w, status, payload)
		return
	}
	resp := saveResponse{OK: true, LinkWarnings: result.LinkWarnings}
	if result.Page != nil {
		resp.Version = result.Page.Meta.Version
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *AdminAPI) handleHistory(w http.ResponseWriter, r *http.Request) {
	if api.versions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	history, err := api.versions.GetHistory(r.Context(), r.PathValue("pageId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (api *AdminAPI) handleLatest(w http.ResponseWriter, r *http.Request) {
	if api.versions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	pageID := r.PathValue("pageId")
	entry, err := api.versions.GetLatestVersion(r.Context(), pageID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "no versions recorded for " + pageID})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *AdminAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	if api.versions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	version, ok := parseVersion(r.PathValue("version"))
	if !ok {
		badRequest(w, "version must be a positive integer")
		return
	}
	pageID := r.PathValue("pageId")
	entry, err := api.versions.GetVersion(r.Context(), pageID, version)
	if err != nil {
		writeError(w, err)
		return
	}
	if entry == nil {
		writeError(w, &versions.VersionNotFoundError{PageID: pageID, Version: version})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *AdminAPI) handleDiff(w http.ResponseWriter, r *http.Request) {
	if api.versions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	query := r.URL.Query()
	from, okFrom := parseVersion(query.Get("from"))
	to, okTo := parseVersion(query.Get("to"))
	if !okFrom || !okTo {
		badRequest(w, "from and to must be positive integers")
		return
	}
	diff, err := api.versions.GetVersionDiff(r.Context(), r.PathValue("pageId"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

func (api *AdminAPI) handleLinks(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	page, err := api.content.GetFresh(r.Context(), r.PathValue("pageId"), content.English)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.links.ValidatePage(page))
}

type cacheClearRequest struct {
	PageID string `json:"pageId,omitempty"`
}

func (api *AdminAPI) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var body cacheClearRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			badRequest(w, "invalid JSON payload")
			return
		}
	}
	if pageID := strings.TrimSpace(body.PageID); pageID != "" {
		api.content.ClearPageCache(pageID)
		api.logger.Info("page cache cleared", "page_id", pageID)
	} else {
		api.content.ClearAll()
		api.logger.Info("content cache cleared")
	}
	writeJSON(w, http.StatusOK, saveResponse{OK: true})
}

func (api *AdminAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, adminHomePath, http.StatusFound)
}
