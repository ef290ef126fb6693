//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"bufio"
	"io"
	"net/http"
	"net/textproto"
	"net/url"

	"gopkg.in/errgo.v1"
)

// Request is what the jar needs to know about an outgoing HTTP request.
type Request interface {
	// URL returns the full request URL. The host and path of
	// the request are taken from it.
	URL() *url.URL

	// Port returns the port the request is made to, or "" when
	// none was declared, in which case "80" is assumed.
	Port() string

	// Header returns the request header. The jar sets the Cookie
	// and Cookie2 headers through it.
	Header() http.Header
}

// Response is what the jar needs to know about an HTTP response.
type Response interface {
	// HeaderValues returns every occurrence of the named header,
	// with folded continuation lines already joined.
	HeaderValues(name string) []string
}

type httpRequest struct {
	req *http.Request
}

// HTTPRequest returns a Request backed by req. Cookie headers added by
// the jar go straight into req.Header.
func HTTPRequest(req *http.Request) Request {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return httpRequest{req}
}

func (r httpRequest) URL() *url.URL       { return r.req.URL }
func (r httpRequest) Port() string        { return r.req.URL.Port() }
func (r httpRequest) Header() http.Header { return r.req.Header }

// urlRequest is a Request for a bare URL, used by the http.CookieJar
// methods of Jar.
type urlRequest struct {
	u      *url.URL
	header http.Header
}

func newURLRequest(u *url.URL) *urlRequest {
	return &urlRequest{u: u, header: make(http.Header)}
}

func (r *urlRequest) URL() *url.URL       { return r.u }
func (r *urlRequest) Port() string        { return r.u.Port() }
func (r *urlRequest) Header() http.Header { return r.header }

// HeaderResponse is a Response backed by an http.Header.
type HeaderResponse http.Header

// HeaderValues implements Response.HeaderValues.
func (h HeaderResponse) HeaderValues(name string) []string {
	return http.Header(h).Values(name)
}

// HTTPResponse returns a Response for resp.
func HTTPResponse(resp *http.Response) Response {
	return HeaderResponse(resp.Header)
}

// ReadResponseHeader reads a MIME-style header block from r, up to and
// including the blank line that ends it. Continuation lines starting
// with white space are joined to the previous line with a single space.
func ReadResponseHeader(r io.Reader) (Response, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	h, err := tp.ReadMIMEHeader()
	if err != nil && !(err == io.EOF && len(h) > 0) {
		return nil, errgo.Notef(err, "cannot read response header")
	}
	return HeaderResponse(h), nil
}
