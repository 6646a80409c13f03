// Package links audits the links embedded in a content tree. Everything here is pure: inputs are
// never mutated and results depend only on the arguments.
package links

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/util"
)

const (
	ReasonRouteNotFound = "internal route not found"
	ReasonInvalidURL    = "invalid external URL"
	ReasonProtocol      = "protocol not allowed"
)

var linkKeys = map[string]struct{}{
	"link": {},
	"href": {},
	"url":  {},
	"src":  {},
}

var embeddedURL = regexp.MustCompile(`https?://[^\s<>"'()\[\]{}]+`)

// Link is a captured reference and the dotted path it was found at.
type Link struct {
	Path  string
	Value string
}

// DefaultKnownRoutes lists the marketing site's static routes.
func DefaultKnownRoutes() []string {
	return []string{
		"/",
		"/about",
		"/services",
		"/team",
		"/portfolio",
		"/blog",
		"/careers",
		"/contact",
		"/privacy",
		"/terms",
	}
}

// Option configures a Validator.
type Option func(*Validator)

// WithKnownRoutes replaces the route allow-list.
func WithKnownRoutes(routes ...string) Option {
	return func(v *Validator) {
		v.routes = normalizeRoutes(routes)
	}
}

// WithLocalePrefixes accepts internal links prefixed by a locale segment, e.g. /es/team.
func WithLocalePrefixes(locales ...string) Option {
	return func(v *Validator) {
		for _, locale := range locales {
			if locale = strings.Trim(strings.TrimSpace(locale), "/"); locale != "" {
				v.localePrefixes = append(v.localePrefixes, "/"+locale)
			}
		}
	}
}

// Validator classifies links against a static route allow-list.
type Validator struct {
	routes         []string
	localePrefixes []string
}

// NewValidator returns a validator using DefaultKnownRoutes unless overridden.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{routes: normalizeRoutes(DefaultKnownRoutes())}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// KnownRoutes returns a copy of the allow-list.
func (v *Validator) KnownRoutes() []string {
	return append([]string(nil), v.routes...)
}

// ValidateLinks runs the default validator over tree.
func ValidateLinks(tree any) content.LinkValidationResult {
	return NewValidator().Validate(tree)
}

// Validate extracts every link in tree and partitions them.
func (v *Validator) Validate(tree any) content.LinkValidationResult {
	result := content.LinkValidationResult{
		Valid:        true,
		InvalidLinks: []content.InvalidLink{},
		ValidLinks:   []string{},
	}
	for _, link := range ExtractLinks(tree, "") {
		if ok, reason := v.Check(link.Value); !ok {
			result.InvalidLinks = append(result.InvalidLinks, content.InvalidLink{
				Path:   link.Path,
				Link:   link.Value,
				Reason: reason,
			})
			continue
		}
		result.ValidLinks = append(result.ValidLinks, link.Value)
	}
	result.Valid = len(result.InvalidLinks) == 0
	return result
}

// ValidatePage audits the content tree of page.
func (v *Validator) ValidatePage(page *content.ContentPage) content.LinkValidationResult {
	if page == nil {
		return v.Validate(nil)
	}
	return v.Validate(page.Content)
}

// Check classifies a single link. Anything that is neither external nor rooted at / is a
// relative reference and always accepted.
func (v *Validator) Check(link string) (bool, string) {
	link = strings.TrimSpace(link)
	switch {
	case isExternal(link):
		return checkExternal(link)
	case strings.HasPrefix(link, "/"):
		if v.knownRoute(link) {
			return true, ""
		}
		return false, ReasonRouteNotFound
	default:
		return true, ""
	}
}

func (v *Validator) knownRoute(link string) bool {
	path := link
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "/"
	}
	if v.matchRoute(path) {
		return true
	}
	for _, prefix := range v.localePrefixes {
		if path == prefix || path == prefix+"/" {
			return true
		}
		if rest, ok := strings.CutPrefix(path, prefix+"/"); ok && v.matchRoute("/"+rest) {
			return true
		}
	}
	return false
}

// matchRoute accepts an exact match or a sub-path of a known route. The root route only matches
// exactly, otherwise every internal link would pass.
func (v *Validator) matchRoute(path string) bool {
	for _, route := range v.routes {
		if path == route {
			return true
		}
		if route != "/" && strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

func isExternal(link string) bool {
	lower := strings.ToLower(link)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:")
}

func checkExternal(link string) (bool, string) {
	parsed, err := url.Parse(link)
	if err != nil {
		return false, ReasonInvalidURL
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		if parsed.Hostname() == "" {
			return false, ReasonInvalidURL
		}
		return true, ""
	case "mailto":
		if strings.TrimSpace(parsed.Opaque) == "" || !strings.Contains(parsed.Opaque, "@") {
			return false, ReasonInvalidURL
		}
		return true, ""
	default:
		return false, ReasonProtocol
	}
}

// ExtractLinks walks node and returns every link found. Values under link, href, url or src keys
// are captured as-is; all other string leaves are scanned for embedded absolute URLs.
func ExtractLinks(node any, path string) []Link {
	out := []Link{}
	walk(node, path, &out)
	return out
}

func walk(node any, path string, out *[]Link) {
	switch value := node.(type) {
	case map[string]any:
		for _, key := range util.SortedKeys(value) {
			child := joinPath(path, key)
			if _, ok := linkKeys[key]; ok {
				capture(value[key], child, out)
				continue
			}
			walk(value[key], child, out)
		}
	case []any:
		for i, item := range value {
			walk(item, joinPath(path, strconv.Itoa(i)), out)
		}
	case []map[string]any:
		for i, item := range value {
			walk(item, joinPath(path, strconv.Itoa(i)), out)
		}
	case []string:
		for i, item := range value {
			walk(item, joinPath(path, strconv.Itoa(i)), out)
		}
	case string:
		for _, match := range embeddedURL.FindAllString(value, -1) {
			*out = append(*out, Link{Path: path, Value: strings.TrimRight(match, ".,;:!?")})
		}
	}
}

// capture records the string under a link key, or both sides of a localized value. Any other
// object is walked like regular content.
func capture(node any, path string, out *[]Link) {
	switch value := node.(type) {
	case string:
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*out = append(*out, Link{Path: path, Value: trimmed})
		}
	case map[string]any:
		if !content.IsLocalizedNode(value) {
			walk(value, path, out)
			return
		}
		for _, key := range util.SortedKeys(value) {
			capture(value[key], joinPath(path, key), out)
		}
	case []any:
		for i, item := range value {
			capture(item, joinPath(path, strconv.Itoa(i)), out)
		}
	case []string:
		for i, item := range value {
			capture(item, joinPath(path, strconv.Itoa(i)), out)
		}
	}
}

// Warnings turns invalid links into non-fatal integrity warnings.
func Warnings(pageID string, result content.LinkValidationResult) []content.LinkIntegrityWarning {
	warnings := make([]content.LinkIntegrityWarning, 0, len(result.InvalidLinks))
	for _, invalid := range result.InvalidLinks {
		warnings = append(warnings, content.LinkIntegrityWarning{PageID: pageID, InvalidLink: invalid})
	}
	return warnings
}

func normalizeRoutes(routes []string) []string {
	out := make([]string, 0, len(routes))
	for _, route := range routes {
		route = strings.TrimSpace(route)
		if route == "" {
			continue
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		if len(route) > 1 {
			route = strings.TrimRight(route, "/")
		}
		out = append(out, route)
	}
	return out
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
