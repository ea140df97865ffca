package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// wantsJSON reports whether the caller is the admin panel script or the
// public search box, both of which expect JSON errors.
func wantsJSON(r *http.Request) bool {
	p := r.URL.Path
	return strings.HasPrefix(p, "/admin/api/") || strings.HasPrefix(p, "/api/")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// reject answers with msg in the format the caller expects.
func reject(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSONError(w, status, msg)
		return
	}
	http.Error(w, msg, status)
}
