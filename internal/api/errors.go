package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standard error body. Fallback, when set, names the
// degraded content the client should show instead of the live listing.
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Fallback string `json:"fallback,omitempty"`
}

// Error messages are served in the page's language; Japanese is the primary
// locale of the site.
var errorMessages = map[string]map[string]string{
	"NOT_FOUND": {
		"ja": "ページが見つかりませんでした",
		"en": "page not found",
	},
	"UPSTREAM_ERROR": {
		"ja": "情報の取得に失敗しました",
		"en": "failed to load content",
	},
	"NOT_LOADED": {
		"ja": "コンテンツを準備中です",
		"en": "content is still loading",
	},
	"BAD_REQUEST": {
		"ja": "不正なリクエストです",
		"en": "invalid request",
	},
}

func errorMessage(code, lang string) string {
	msgs, ok := errorMessages[code]
	if !ok {
		return code
	}
	if msg, ok := msgs[lang]; ok {
		return msg
	}
	return msgs["en"]
}

// writeError writes a localized JSON error response.
func writeError(w http.ResponseWriter, status int, lang, code string) {
	writeJSON(w, status, ErrorResponse{Error: errorMessage(code, lang), Code: code})
}

// writeUpstreamError reports an upstream fetch failure. The fallback hint
// tells the client to keep the statically rendered listing on screen.
func writeUpstreamError(w http.ResponseWriter, lang string) {
	writeJSON(w, http.StatusBadGateway, ErrorResponse{
		Error:    errorMessage("UPSTREAM_ERROR", lang),
		Code:     "UPSTREAM_ERROR",
		Fallback: "static",
	})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
