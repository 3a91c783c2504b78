package types

// Result is the uniform envelope returned by every job board operation.
// Count is only set by listing operations.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}
