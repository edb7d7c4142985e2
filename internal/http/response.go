package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is built fluently and written once.
type Response struct {
	statusCode  int
	contentType string
	headers     map[string]string
	body        []byte
}

func NewResponse(statusCode int) *Response {
	return &Response{statusCode: statusCode, headers: make(map[string]string)}
}

// Text is a plain-text response, the shape the ledger's clients expect for mutations.
func Text(statusCode int, message string) *Response {
	r := NewResponse(statusCode)
	r.contentType = "text/plain; charset=utf-8"
	r.body = []byte(message)
	return r
}

// JSON encodes v; an encoding failure becomes a 500.
func JSON(statusCode int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return Text(http.StatusInternalServerError, "Internal server error")
	}
	r := NewResponse(statusCode)
	r.contentType = "application/json"
	r.body = append(body, '\n')
	return r
}

func (r *Response) Header(name, value string) *Response {
	r.headers[name] = value
	return r
}

func (r *Response) StatusCode() int {
	return r.statusCode
}

func (r *Response) Write(w http.ResponseWriter) {
	for name, value := range r.headers {
		w.Header().Set(name, value)
	}
	if r.contentType != "" {
		w.Header().Set("Content-Type", r.contentType)
	}
	w.WriteHeader(r.statusCode)
	if len(r.body) > 0 {
		_, _ = w.Write(r.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func JSONError(statusCode int, message string) *Response {
	return JSON(statusCode, errorBody{Error: message})
}
