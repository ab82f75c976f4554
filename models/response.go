package models

// ErrorResponse is the body of every non-2xx crawl response.
type ErrorResponse struct {
	Error string `json:"error"`

	// Details carries the wrapped cause; only populated in development.
	Details string `json:"details,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status        string `json:"status"` // "healthy" or "degraded"
	Uptime        string `json:"uptime"`
	ActiveCrawls  int    `json:"active_crawls"`
	MaxConcurrent int    `json:"max_concurrent"`
	Version       string `json:"version"`
}

// SessionStats reports crawler activity.
type SessionStats struct {
	ActiveSessions int   `json:"active_sessions"`
	TotalSessions  int64 `json:"total_sessions"`
}
