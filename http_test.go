//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"net/http"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestReadResponseHeader(t *testing.T) {
	c := qt.New(t)
	resp, err := ReadResponseHeader(strings.NewReader("" +
		"Set-Cookie: a=b;\r\n" +
		"  path=/\r\n" +
		"Set-Cookie2: c=d; Version=1\r\n" +
		"set-cookie: e=f\r\n" +
		"\r\n" +
		"body"))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.HeaderValues("Set-Cookie"), qt.DeepEquals, []string{"a=b; path=/", "e=f"})
	c.Assert(resp.HeaderValues("Set-Cookie2"), qt.DeepEquals, []string{"c=d; Version=1"})
	c.Assert(resp.HeaderValues("X-Missing"), qt.HasLen, 0)
}

func TestReadResponseHeaderWithoutBlankLine(t *testing.T) {
	c := qt.New(t)
	resp, err := ReadResponseHeader(strings.NewReader("Set-Cookie: a=b\r\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.HeaderValues("Set-Cookie"), qt.DeepEquals, []string{"a=b"})
}

func TestReadResponseHeaderEmpty(t *testing.T) {
	c := qt.New(t)
	_, err := ReadResponseHeader(strings.NewReader(""))
	c.Assert(err, qt.ErrorMatches, "cannot read response header: EOF")
}

func TestHTTPAdapters(t *testing.T) {
	c := qt.New(t)
	j := newTestJar(c, nil)

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "a=b; path=/")
	req, err := http.NewRequest("GET", "http://www.acme.com:8080/index.html", nil)
	c.Assert(err, qt.IsNil)
	j.ExtractCookies(HTTPResponse(resp), HTTPRequest(req), false)
	c.Assert(cookieKeys(j), qt.DeepEquals, []string{"www.acme.com / a"})

	req, err = http.NewRequest("GET", "http://www.acme.com/other", nil)
	c.Assert(err, qt.IsNil)
	r := HTTPRequest(req)
	c.Assert(r.Port(), qt.Equals, "")
	j.AddCookieHeader(r, false)
	c.Assert(req.Header.Get("Cookie"), qt.Equals, "a=b")
	c.Assert(req.Header.Get("Cookie2"), qt.Equals, `$Version="1"`)

	// A request built by hand may have no header map yet.
	req = &http.Request{URL: mustParseURL(c, "http://www.acme.com/")}
	j.AddCookieHeader(HTTPRequest(req), false)
	c.Assert(req.Header.Get("Cookie"), qt.Equals, "a=b")
}

func TestClientRoundTrip(t *testing.T) {
	c := qt.New(t)
	j := newTestJar(c, nil)
	client := &http.Client{
		Jar: j,
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			h := http.Header{}
			if req.URL.Path == "/login" {
				h.Add("Set-Cookie", "session=xyz; Path=/")
			}
			h.Set("X-Cookie", req.Header.Get("Cookie"))
			return &http.Response{StatusCode: 200, Header: h, Body: http.NoBody, Request: req}, nil
		}),
	}
	resp, err := client.Get("http://www.acme.com/login")
	c.Assert(err, qt.IsNil)
	c.Assert(resp.Header.Get("X-Cookie"), qt.Equals, "")
	resp, err = client.Get("http://www.acme.com/home")
	c.Assert(err, qt.IsNil)
	c.Assert(resp.Header.Get("X-Cookie"), qt.Equals, "session=xyz")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
