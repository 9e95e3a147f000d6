// Package http provides the chi-backed server, router facade and response helpers
package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	stdhttp "net/http"
	"os"
	"time"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/platform/logger"
	pnet "storeuptime/internal/platform/net"
)

// Envelope is the standard response body for all JSON endpoints
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes a 200 envelope with data
func RespondOK(w stdhttp.ResponseWriter, r *stdhttp.Request, data any) {
	JSON(w, stdhttp.StatusOK, Envelope{
		StatusCode: stdhttp.StatusOK,
		Status:     stdhttp.StatusText(stdhttp.StatusOK),
		RequestID:  pnet.RequestID(r.Context()),
		Data:       data,
	})
}

// RespondError maps a project error into an envelope and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, wr := perr.HTTP(err)
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       wr.Code,
		Error:      wr.Message,
		Field:      wr.Field,
		RequestID:  pnet.RequestID(r.Context()),
	})
}

// Attachment is a file body served with Content-Disposition: attachment
// Path wins over Bytes when both are set
type Attachment struct {
	Name        string
	ContentType string
	Path        string
	Bytes       []byte
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
	File   *Attachment
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	if err, ok := resp.Body.(error); ok && err != nil {
		RespondError(w, r, err)
		return
	}
	if resp.File != nil {
		if err := resp.File.serve(w, r); err != nil {
			logger.C(r.Context()).Warn().Err(err).Str("file", resp.File.Name).Msg("attachment not served")
			w.Header().Del("Content-Disposition")
			RespondError(w, r, err)
		}
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
		Data:       resp.Body,
	})
}

func (a *Attachment) serve(w stdhttp.ResponseWriter, r *stdhttp.Request) error {
	var (
		body    io.ReadSeeker
		modtime time.Time
	)
	if a.Path != "" {
		f, err := os.Open(a.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return perr.Wrapf(err, perr.ErrorCodeNotFound, "artifact %s is gone", a.Name)
			}
			return perr.Wrap(err, perr.ErrorCodeUnknown, "open artifact")
		}
		defer f.Close()
		if st, err := f.Stat(); err == nil {
			modtime = st.ModTime()
		}
		body = f
	} else {
		body = bytes.NewReader(a.Bytes)
	}

	if a.ContentType != "" {
		w.Header().Set("Content-Type", a.ContentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	stdhttp.ServeContent(w, r, a.Name, modtime, body)
	return nil
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Accepted returns a 202 response for work that completes later
func Accepted(data any) Response { return Response{Status: stdhttp.StatusAccepted, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }

// Download returns a 200 attachment response
func Download(a Attachment) Response { return Response{Status: stdhttp.StatusOK, File: &a} }

// WithHeader returns a copy of resp carrying an extra header
func (resp Response) WithHeader(key, value string) Response {
	h := stdhttp.Header{}
	for k, vv := range resp.Header {
		h[k] = append([]string(nil), vv...)
	}
	h.Set(key, value)
	resp.Header = h
	return resp
}
