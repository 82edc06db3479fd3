package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Node routes with IDs (node/subscription ids are opaque strings, not
	// necessarily numeric, so these match any non-slash segment)
	{Pattern: regexp.MustCompile(`^/nodes/[^/]+$`), Template: "/nodes/:id"},
	{Pattern: regexp.MustCompile(`^/nodes/[^/]+/children$`), Template: "/nodes/:id/children"},
	{Pattern: regexp.MustCompile(`^/nodes/[^/]+/rules$`), Template: "/nodes/:id/rules"},

	// Subscription routes with IDs
	{Pattern: regexp.MustCompile(`^/subscriptions/[^/]+$`), Template: "/subscriptions/:id"},
	{Pattern: regexp.MustCompile(`^/subscriptions/[^/]+/items$`), Template: "/subscriptions/:id/items"},
	{Pattern: regexp.MustCompile(`^/subscriptions/[^/]+/stats$`), Template: "/subscriptions/:id/stats"},

	// Job routes with IDs
	{Pattern: regexp.MustCompile(`^/jobs/[^/]+$`), Template: "/jobs/:id"},
	{Pattern: regexp.MustCompile(`^/jobs/[^/]+/cancel$`), Template: "/jobs/:id/cancel"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /nodes/abc-123) to template format (e.g., /nodes/:id).
// Static paths remain unchanged.
//
// Performance: <1μs per operation (pre-compiled regex patterns)
//
// Examples:
//
//	NormalizePath("/nodes/abc-123")           // "/nodes/:id"
//	NormalizePath("/nodes/abc-123/children")  // "/nodes/:id/children"
//	NormalizePath("/subscriptions/feed-1")    // "/subscriptions/:id"
//	NormalizePath("/health")                  // "/health" (unchanged)
//	NormalizePath("/metrics")                 // "/metrics" (unchanged)
//	NormalizePath("/unknown/path/123")        // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/nodes/abc-123?verbose=1") // "/nodes/:id"
//	NormalizePath("/nodes/abc-123/")          // "/nodes/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path
	// This is safe - static paths like /health and /metrics pass through unchanged
	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization. This is useful for capacity planning and monitoring.
//
// Expected cardinality calculation:
//   - Static endpoints: ~8-10 (health, metrics, due, etc.)
//   - Template endpoints: ~8 (nodes/:id, subscriptions/:id, jobs/:id, etc.)
//   - Total: ~15-20 unique path labels
func GetExpectedCardinality() int {
	// Count template patterns
	templateCount := len(pathPatterns)

	// Estimate static endpoints
	staticCount := 10 // /health, /metrics, /auth/token, etc.

	// Total expected cardinality
	return templateCount + staticCount
}
