package httpx

import (
	"bytes"
	"net/http"
)

// ResponseBuffer is an http.ResponseWriter that captures the response in
// memory, so a handler can be invoked internally and its output inspected
// before anything is sent to the real client.
type ResponseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() *ResponseBuffer {
	return &ResponseBuffer{}
}

func (resp *ResponseBuffer) Header() http.Header {
	if resp.header == nil {
		resp.header = http.Header{}
	}
	return resp.header
}

func (resp *ResponseBuffer) Write(body []byte) (int, error) {
	return resp.body.Write(body)
}

func (resp *ResponseBuffer) WriteHeader(statusCode int) {
	resp.status = statusCode
}

// Status returns the captured status code, or 200 if the handler never set
// one explicitly.
func (resp *ResponseBuffer) Status() int {
	if resp.status == 0 {
		return http.StatusOK
	}
	return resp.status
}

func (resp *ResponseBuffer) Body() []byte {
	return resp.body.Bytes()
}

// Flush replays the captured headers, status and body onto w.
func (resp *ResponseBuffer) Flush(w http.ResponseWriter) error {
	if resp.header != nil {
		header := w.Header()
		for key, value := range resp.header {
			header[key] = value
		}
	}
	if resp.status != 0 {
		w.WriteHeader(resp.status)
	}
	if resp.body.Len() > 0 {
		_, err := w.Write(resp.body.Bytes())
		return err
	}
	return nil
}
