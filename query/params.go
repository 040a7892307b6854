package query

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// MaxPerPage caps the page size a caller may request
const MaxPerPage = 100

// filterPattern matches query parameters like filter[key]
var filterPattern = regexp.MustCompile(`^filter\[([^\]]+)\]$`)

// Params are the list parameters taken from a request
type Params struct {
	Filter  map[string]string
	Sort    []string
	Include []string
	Page    int
	PerPage int
}

// ParseParams reads filter, sort, include and pagination parameters.
// PerPage is zero when the caller did not ask for a page size.
func ParseParams(r *http.Request) Params {
	return Params{
		Filter:  ParseFilter(r),
		Sort:    ParseSort(r),
		Include: ParseInclude(r),
		Page:    parsePositive(r.URL.Query().Get("page"), 1),
		PerPage: parsePositive(r.URL.Query().Get("per_page"), 0),
	}
}

// ParseFilter parses the filter query parameters into a map of filter keys to values.
// Example: ?filter[status]=paid&filter[client_id]=123
// Returns: {"status": "paid", "client_id": "123"}
func ParseFilter(r *http.Request) map[string]string {
	result := make(map[string]string)

	for key, values := range r.URL.Query() {
		matches := filterPattern.FindStringSubmatch(key)
		if len(matches) != 2 {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			result[matches[1]] = values[0]
		}
	}

	return result
}

// ParseSort parses the sort query parameter into a slice of sort fields.
// Example: ?sort=-created_at,name returns ["-created_at", "name"]
// The "-" prefix indicates descending sort order.
func ParseSort(r *http.Request) []string {
	return splitList(r.URL.Query().Get("sort"))
}

// ParseInclude parses the include query parameter into a slice of relationship names.
// Example: ?include=client,technician returns ["client", "technician"]
func ParseInclude(r *http.Request) []string {
	return splitList(r.URL.Query().Get("include"))
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
