package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/pages"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const defaultContentBasePath = "/api/content"

// ContentAPI serves read-only page content to clients.
type ContentAPI struct {
	basePath string
	content  pages.Service
	logger   interfaces.Logger
}

// ContentOption configures the public content API.
type ContentOption func(*ContentAPI)

// WithContentBasePath overrides the public base path.
func WithContentBasePath(path string) ContentOption {
	return func(api *ContentAPI) {
		if strings.TrimSpace(path) != "" {
			api.basePath = path
		}
	}
}

// WithContentLogger sets the logger used for failed reads.
func WithContentLogger(logger interfaces.Logger) ContentOption {
	return func(api *ContentAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// NewContentAPI builds the public API over the content service.
func NewContentAPI(svc pages.Service, opts ...ContentOption) *ContentAPI {
	api := &ContentAPI{
		basePath: defaultContentBasePath,
		content:  svc,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// Register attaches the public routes to mux.
func (api *ContentAPI) Register(mux *http.ServeMux) error {
	if api == nil || mux == nil {
		return nil
	}
	mux.HandleFunc("GET "+joinPath(api.basePath, "{pageId}"), api.handleGet)
	return nil
}

type contentResponse struct {
	*content.ContentPage
	UpdatedAt string `json:"updatedAt"`
}

func (api *ContentAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	locale, err := resolveLocale(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pageID := r.PathValue("pageId")
	page, err := api.content.Get(r.Context(), pageID, locale)
	if err != nil {
		status, payload := mapError(err)
		if status >= http.StatusInternalServerError {
			api.logger.Error("content read failed", "page_id", pageID, "locale", locale, "error", err)
		}
		writeJSON(w, status, payload)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{
		ContentPage: page,
		UpdatedAt:   page.Meta.LastUpdated,
	})
}
