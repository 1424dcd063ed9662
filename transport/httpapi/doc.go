// Package httpapi exposes the lending services over HTTP/JSON with echo.
//
// All routes live under /api/v1. Error kinds map to status codes:
// not found 404, conflicts 409, ineligible readers 422, invalid input 400, everything else 500.
package httpapi
