// Package respond writes API response bodies and the shared error envelope.
// Every body is specific to one account, so nothing may be stored by shared
// caches.
package respond

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorResponse is the error envelope of every non-2xx response.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// WriteJSONObject encodes v as the response body.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError sends the error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetail(w, status, code, message, "")
}

// WriteErrorDetail sends the error envelope with a detail line, usually the
// underlying cause.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Detail = detail
	WriteJSONObject(w, status, resp)
}

// WriteCached sends a pre-encoded body that the client may reuse for maxAge
// seconds and revalidate with etag. X-Cache tells whether the server's own
// cache answered.
func WriteCached(w http.ResponseWriter, data []byte, etag string, maxAge int, hit bool) {
	validators(w, etag, maxAge)
	w.Header().Set("Content-Type", "application/json")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// WriteNotModified answers a matching If-None-Match.
func WriteNotModified(w http.ResponseWriter, etag string, maxAge int) {
	validators(w, etag, maxAge)
	w.WriteHeader(http.StatusNotModified)
}

func validators(w http.ResponseWriter, etag string, maxAge int) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age="+strconv.Itoa(maxAge))
	w.Header().Set("Vary", "Authorization")
}
