package motor

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/pb33f/harhar"
)

// Request is a read facade over the request half of a captured entry.
// It reads the raw entry live, it does not copy it.
type Request struct {
	entry *harhar.Entry
}

func newRequest(entry *harhar.Entry) *Request {
	return &Request{entry: entry}
}

func (r *Request) Method() string {
	return r.entry.Request.Method
}

func (r *Request) URL() string {
	return r.entry.Request.URL
}

func (r *Request) HTTPVersion() string {
	return r.entry.Request.HTTPVersion
}

// Host returns the host part of the URL, empty if the URL does not parse.
func (r *Request) Host() string {
	u, err := url.Parse(r.entry.Request.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Path returns the URL path, "/" when empty.
func (r *Request) Path() string {
	u, err := url.Parse(r.entry.Request.URL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func (r *Request) Headers() []harhar.NameValuePair {
	return r.entry.Request.Headers
}

// Header returns the first header value matching name (case-insensitive).
func (r *Request) Header(name string) string {
	return headerValue(r.entry.Request.Headers, name)
}

// Body returns the posted body text.
func (r *Request) Body() string {
	return r.entry.Request.Body.Content
}

// Response is a read facade over the response half of a captured entry. Content is
// fetched through the flow's ContentSource, so it may block and may fail.
type Response struct {
	flowID int
	entry  *harhar.Entry
	source ContentSource
}

func newResponse(flowID int, entry *harhar.Entry, source ContentSource) *Response {
	return &Response{flowID: flowID, entry: entry, source: source}
}

func (r *Response) Status() int {
	return r.entry.Response.StatusCode
}

func (r *Response) StatusText() string {
	return r.entry.Response.StatusText
}

func (r *Response) MimeType() string {
	return r.entry.Response.Body.MIMEType
}

// Size is the decompressed content size as recorded in the capture.
func (r *Response) Size() int {
	return r.entry.Response.Body.Size
}

func (r *Response) Headers() []harhar.NameValuePair {
	return r.entry.Response.Headers
}

// Header returns the first header value matching name (case-insensitive).
func (r *Response) Header(name string) string {
	return headerValue(r.entry.Response.Headers, name)
}

// Content returns the response body as text. Failures wrap ErrContentUnavailable
// unless the source returns its own error.
func (r *Response) Content(ctx context.Context) (string, error) {
	if r.source != nil {
		return r.source.ResponseContent(ctx, r.flowID)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return decodeResponseContent(r.entry)
}

// decodeResponseContent extracts the response text from an entry, decoding base64 bodies.
func decodeResponseContent(entry *harhar.Entry) (string, error) {
	body := entry.Response.Body
	if body.Content == "" {
		return "", ErrContentUnavailable
	}

	if strings.EqualFold(body.Encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(body.Content)
		if err != nil {
			return "", fmt.Errorf("%w: invalid base64 body: %v", ErrContentUnavailable, err)
		}
		if len(decoded) == 0 {
			return "", ErrContentUnavailable
		}
		return string(decoded), nil
	}

	return body.Content, nil
}

func headerValue(headers []harhar.NameValuePair, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
