package models

import (
	"sort"
	"strings"
)

// SourceStatus is the download state of a SourceItem
type SourceStatus string

const (
	SourceStatusReady       SourceStatus = "ready"
	SourceStatusDownloading SourceStatus = "downloading"
	SourceStatusSuccess     SourceStatus = "success"
	SourceStatusFailed      SourceStatus = "failed"
)

// String returns the string representation of the status
func (s SourceStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses
func (s SourceStatus) Valid() bool {
	switch s {
	case SourceStatusReady, SourceStatusDownloading, SourceStatusSuccess, SourceStatusFailed:
		return true
	}
	return false
}

// IsFinished reports whether the download ran to an outcome
func (s SourceStatus) IsFinished() bool {
	return s == SourceStatusSuccess || s == SourceStatusFailed
}

// transitions lists every reachable status change within one lifecycle. Downloading→Ready is
// the manual reset for rows left behind when the app was closed mid-download.
//
// Success and Failed are terminal. Retrying a finished source is not a transition: it starts
// a new lifecycle at Ready (see sources.Repository.Restart) which then moves to Downloading.
var transitions = map[SourceStatus][]SourceStatus{
	SourceStatusReady:       {SourceStatusDownloading},
	SourceStatusDownloading: {SourceStatusSuccess, SourceStatusFailed, SourceStatusReady},
}

// CanTransition reports whether a source may move from one status to another
func CanTransition(from, to SourceStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourceType is the kind of media a source points at
type SourceType string

const SourceTypeM3u8 SourceType = "m3u8"

// SourceItem is one user-submitted download job
type SourceItem struct {
	Status         SourceStatus      `json:"status"`
	Type           SourceType        `json:"type"`
	Directory      string            `json:"directory"`
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Duration       int               `json:"duration"`
	CreatedAt      int64             `json:"createdAt"` // unix milliseconds
	Headers        map[string]string `json:"headers,omitempty"`
	DeleteSegments bool              `json:"deleteSegments"`
}

// SourceForm is what the new-source form submits
type SourceForm struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Headers string `json:"headers"` // one "Name: value" per line
	Delete  bool   `json:"delete"`
}

// ParseHeaders turns "Name: value" lines into a header map. Lines without a colon or
// with an empty name are skipped. Returns nil when no header was found.
func ParseHeaders(raw string) map[string]string {
	var headers map[string]string
	for _, line := range strings.Split(raw, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if headers == nil {
			headers = make(map[string]string)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers
}

// SortedHeaderNames returns the header names in lexical order
func SortedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
