package transport

import (
	"encoding/json"

	"github.com/fastygo/tasktrack/domain"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CodeDegraded is returned by /health while a critical probe is failing.
const CodeDegraded = "DEGRADED"

// Envelope wraps every JSON body the API writes. Code and Message are set on
// failures only; Page only on list responses.
type Envelope struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Page    *Page       `json:"page,omitempty"`
}

// Page describes the window a list response covers. NextOffset is set when
// the window came back full, so more rows may follow.
type Page struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Count      int  `json:"count"`
	NextOffset *int `json:"next_offset,omitempty"`
}

func NewPage(limit, offset, count int) *Page {
	page := &Page{Limit: limit, Offset: offset, Count: count}
	if limit > 0 && count >= limit {
		next := offset + count
		page.NextOffset = &next
	}
	return page
}

func Success(data interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

func Paged(data interface{}, page *Page) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Page: page}
}

// Failure carries a domain error code to the client.
func Failure(code domain.ErrorCode, message string) Envelope {
	return Envelope{Status: StatusError, Code: string(code), Message: message}
}

// Degraded reports probe results alongside the failure.
func Degraded(data interface{}) Envelope {
	return Envelope{
		Status:  StatusError,
		Code:    CodeDegraded,
		Message: "critical dependency unavailable",
		Data:    data,
	}
}

// String is used where the body is written without a handler, e.g. auth rejects.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return `{"status":"error"}`
	}
	return string(out)
}
