package models

import "fmt"

// Result is one normalized web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// ProviderError carries the HTTP status and body of a failed search call.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s search failed (%d): %s", e.Provider, e.Status, e.Body)
}
