package ui

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

func joinBasePath(basePath, suffix string) string {
	base := strings.TrimSpace(basePath)
	if base == "" {
		base = "/admin"
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	if base == "/" {
		return suffix
	}
	return strings.TrimRight(base, "/") + suffix
}

func templHandler(w http.ResponseWriter, r *http.Request, component templ.Component) {
	templ.Handler(component).ServeHTTP(w, r)
}

func parsePositiveInt(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parsePositiveIntDefault(raw string, fallback int) int {
	value, err := parsePositiveInt(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
