package models

// Response codes carried by Envelope.Code
const (
	CodeSuccess = 0
	CodeFailure = -1
)

// Envelope is the reply shape of every IPC channel: Code 0 with Data, or a
// non-zero Code with Msg.
type Envelope struct {
	Code int    `json:"code"`
	Data any    `json:"data,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// Success wraps data in a successful envelope
func Success(data any) Envelope {
	return Envelope{Code: CodeSuccess, Data: data}
}

// Failure builds a failed envelope
func Failure(code int, msg string) Envelope {
	return Envelope{Code: code, Msg: msg}
}

// OK reports whether the envelope carries a success code
func (e Envelope) OK() bool {
	return e.Code == CodeSuccess
}

// Event is a message pushed from the coordinating process to presentation processes
type Event struct {
	Channel string `json:"channel"`
	Data    any    `json:"data,omitempty"`
}

// PageInfo describes a page loaded in the browser surface
type PageInfo struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	MediaURLs []string `json:"mediaUrls"`
}
