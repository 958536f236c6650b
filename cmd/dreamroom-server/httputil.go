package main

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
)

// containsPathTraversal returns true if the path contains directory
// traversal sequences that could escape the artifact directory.
//
// The raw segments are checked before filepath.Clean resolves them, because
// Clean("/tmp/../etc") silently produces "/etc" with no ".." remaining.
func containsPathTraversal(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return strings.Contains(p, "/") || strings.Contains(p, "\\")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
