package webutil

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: Failed to marshal JSON response: %v", err)
		w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondWithHTML writes an HTML fragment with an ETag. A request whose
// If-None-Match already names that tag gets 304 and no body.
func RespondWithHTML(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	tag := ETag(body)
	w.Header().Set(HeaderContentType, ContentTypeHTMLUTF8)
	w.Header().Set(HeaderCacheCtl, "no-cache")
	w.Header().Set(HeaderETag, tag)

	if status == http.StatusOK && etagMatches(r.Header.Get(HeaderIfNoneMatch), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}

// WantsHTML reports whether the client asked for an HTML answer.
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
