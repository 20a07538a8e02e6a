// Package imagesearch routes image search queries through interchangeable
// engines with a fixed fallback order.
package imagesearch

// Result status values callers can branch on without inspecting error text.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result captures a single image hit. Both engines produce the identical
// shape so callers stay strategy-agnostic.
type Result struct {
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// FailureResult builds a Result describing a failed search.
func FailureResult(errMsg string) Result {
	return Result{
		Status: StatusFailed,
		Error:  errMsg,
	}
}

// SuccessCount returns how many entries in results carry StatusSuccess.
func SuccessCount(results []Result) int {
	var n int
	for _, r := range results {
		if r.Status == StatusSuccess {
			n++
		}
	}
	return n
}
