//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"net/http"
	"net/url"
	"testing"

	qt "github.com/frankban/quicktest"
)

var domainMatchTests = []struct {
	host, domain string
	match        bool
	liberal      bool
}{
	{"192.168.1.1", "192.168.1.1", true, true},
	{"192.168.1.1", ".168.1.1", false, false},
	{"192.168.1.1", "168.1.1", false, false},
	{"x.y.com", "x.Y.com", true, true},
	{"a.b.c.com", ".c.com", true, true},
	{".c.com", "a.b.c.com", false, false},
	{"example.local", ".local", true, true},
	{"blah.blah", "", false, true},
	{"", ".rhubarb.rhubarb", false, false},
	{"", "", true, true},
	{"acme.com", ".acme.com", false, false},
	{"www.acme.com", "acme.com", false, true},
	{"acme.com", "www.acme.com", false, false},
	{"foo.com", ".com", true, true},
	{"x.foo.com", ".foo.com.", false, false},
}

func TestDomainMatch(t *testing.T) {
	c := qt.New(t)
	for _, test := range domainMatchTests {
		c.Check(DomainMatch(test.host, test.domain), qt.Equals, test.match, qt.Commentf("%q %q", test.host, test.domain))
		c.Check(LiberalDomainMatch(test.host, test.domain), qt.Equals, test.liberal, qt.Commentf("%q %q", test.host, test.domain))
	}
}

func TestIsHostDomainName(t *testing.T) {
	c := qt.New(t)
	for s, expect := range map[string]bool{
		"foo.bar.com": true,
		"localhost":   true,
		"192.168.1.1": false,
		"foo.123":     false,
		".foo":        false,
		"foo.":        false,
		"":            false,
	} {
		c.Check(IsHostDomainName(s), qt.Equals, expect, qt.Commentf("%q", s))
	}
}

func TestPathMatch(t *testing.T) {
	c := qt.New(t)
	c.Assert(PathMatch("/foo/bar", "/foo"), qt.IsTrue)
	c.Assert(PathMatch("/foobar", "/foo"), qt.IsTrue)
	c.Assert(PathMatch("/foo", "/foo/"), qt.IsFalse)
	c.Assert(PathMatch("/", "/"), qt.IsTrue)
}

var normalizePathTests = []struct {
	in, out string
}{
	{"", ""},
	{"/", "/"},
	{"/foo%2f/bar", "/foo%2F/bar"},
	{"/foo%2F/bar", "/foo%2F/bar"},
	{"/foo%41bar", "/fooAbar"},
	{"/foo%25", "/foo%25"},
	{"/foo bar", "/foo%20bar"},
	{"/%7Ebob", "/~bob"},
	{"/caf\xc3\xa9", "/caf%C3%A9"},
	{"/caf%c3%a9", "/caf%C3%A9"},
	{"/foo%2", "/foo%2"},
	{"/foo%zz", "/foo%zz"},
	{"/a\x7fb", "/a%7Fb"},
}

func TestNormalizePath(t *testing.T) {
	c := qt.New(t)
	for _, test := range normalizePathTests {
		c.Check(normalizePath(test.in), qt.Equals, test.out, qt.Commentf("%q", test.in))
	}
}

var canonicalHostTests = []struct {
	in, out string
}{
	{"www.example.com", "www.example.com"},
	{"WWW.Example.COM:8080", "www.example.com"},
	{"example.com.", "example.com"},
	{"192.168.0.10:80", "192.168.0.10"},
	{"[2001:4860:0:2001::68]:8080", "2001:4860:0:2001::68"},
	{"bücher.example", "xn--bcher-kva.example"},
}

func TestCanonicalHost(t *testing.T) {
	c := qt.New(t)
	for _, test := range canonicalHostTests {
		c.Check(canonicalHost(test.in), qt.Equals, test.out, qt.Commentf("%q", test.in))
	}
}

func TestEffectiveHost(t *testing.T) {
	c := qt.New(t)
	for rawurl, expect := range map[string]string{
		"http://localhost/":          "localhost.local",
		"http://LocalHost:8080/x":    "localhost.local",
		"http://www.acme.com/":       "www.acme.com",
		"http://192.168.1.1:81/path": "192.168.1.1",
	} {
		c.Check(effectiveHost(newURLRequest(mustParseURL(c, rawurl))), qt.Equals, expect)
	}

	// The Host header stands in for a missing URL host.
	req := &urlRequest{u: &url.URL{Path: "/"}, header: http.Header{"Host": {"www.acme.com:80"}}}
	c.Assert(effectiveHost(req), qt.Equals, "www.acme.com")
}

func TestRequestPathAndPort(t *testing.T) {
	c := qt.New(t)
	req := newURLRequest(mustParseURL(c, "http://www.acme.com"))
	c.Assert(requestPath(req.URL()), qt.Equals, "/")
	c.Assert(requestPort(req), qt.Equals, "80")

	req = newURLRequest(mustParseURL(c, "http://www.acme.com:8080/a%20b/c?q=1"))
	c.Assert(requestPath(req.URL()), qt.Equals, "/a%20b/c")
	c.Assert(requestPort(req), qt.Equals, "8080")
}
