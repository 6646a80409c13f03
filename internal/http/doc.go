// Package http exposes the content layer over HTTP for callers that cannot reach a content
// source directly.
//
// Public routes:
//   - GET /api/content/{pageId}?locale=en|es
//
// Admin routes mount under /api/admin by default:
//   - POST /content/{pageId}
//   - GET  /content/{pageId}/versions, /content/{pageId}/versions/latest,
//     /content/{pageId}/versions/{version}
//   - GET  /content/{pageId}/diff?from=&to=
//   - GET  /content/{pageId}/links
//   - POST /cache/clear
//
// GET /admin/login is a stub that redirects to /admin. Host applications register the handlers
// on their own mux.
package http
