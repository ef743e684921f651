package dto

import "time"

// ScanResponse is the envelope returned by the scheduler entrypoint.
type ScanResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
