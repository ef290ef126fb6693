//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// ipv4Regexp is a loose test for a host name that ends like an IPv4
// address. It is also used to spot IP literals in domain attributes.
var ipv4Regexp = regexp.MustCompile(`\.\d+$`)

// IsHostDomainName reports whether s is a host domain name: it is not
// empty, does not start or end with a dot and does not look like an IPv4
// address.
func IsHostDomainName(s string) bool {
	if s == "" || ipv4Regexp.MatchString(s) {
		return false
	}
	return s[0] != '.' && s[len(s)-1] != '.'
}

// DomainMatch reports whether host domain-matches domain according to
// RFC 2965 section 1. The comparison ignores case.
//
// The relation is not symmetric: "a.b.c.com" domain-matches ".c.com"
// but not the reverse.
func DomainMatch(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	if host == domain {
		return true
	}
	if !IsHostDomainName(host) {
		return false
	}
	// host must have the form N+domain for non-empty N.
	if len(host) <= len(domain) || !strings.HasSuffix(host, domain) {
		return false
	}
	if !strings.HasPrefix(domain, ".") {
		return false
	}
	return IsHostDomainName(domain[1:])
}

// LiberalDomainMatch is the match used for blocked domains: domain
// matches host when it is empty, equal to host or, unless either looks
// like an IPv4 address, a suffix of host.
func LiberalDomainMatch(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	if domain == "" || host == domain {
		return true
	}
	if ipv4Regexp.MatchString(host) || ipv4Regexp.MatchString(domain) {
		return false
	}
	return strings.HasSuffix(host, domain)
}

// PathMatch reports whether the (normalized) request path lies under the
// cookie path. This is a plain prefix test for both protocols.
func PathMatch(requestPath, cookiePath string) bool {
	return strings.HasPrefix(requestPath, cookiePath)
}

// normalizePath normalises a URI path so that plain string comparison
// can be used. Printable characters are given literally and all others
// %-escaped with upper case hex digits. %2F and %25 stay escaped because
// they stand for the path separator and the escape character.
func normalizePath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '%' && i+2 < len(path) && isHex(path[i+1]) && isHex(path[i+2]) {
			hex := strings.ToUpper(path[i+1 : i+3])
			i += 2
			if hex == "2F" || hex == "25" {
				b.WriteString("%" + hex)
				continue
			}
			n, _ := strconv.ParseUint(hex, 16, 8)
			c = byte(n)
		}
		if c <= 0x20 || c >= 0x7f {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// canonicalHost lower-cases host, strips any port and trailing dot and
// converts internationalised names to their ASCII form. Conversion
// failures leave the lower-cased host as is.
func canonicalHost(host string) string {
	host = strings.ToLower(host)
	if hasPort(host) {
		if i := strings.LastIndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	host = strings.TrimSuffix(host, ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// hasPort reports whether host contains a port number. host may be a
// host name, an IPv4 or an IPv6 address.
func hasPort(host string) bool {
	colons := strings.Count(host, ":")
	if colons == 0 {
		return false
	}
	if colons == 1 {
		return true
	}
	return host[0] == '[' && strings.Contains(host, "]:")
}

// requestHost returns the host the request is made to, without port.
// The Host header is consulted only when the URL carries no host.
func requestHost(r Request) string {
	host := r.URL().Host
	if host == "" {
		host = r.Header().Get("Host")
	}
	return canonicalHost(host)
}

// effectiveHost returns the effective request-host name of r: its host
// with ".local" appended when the host contains no dot.
func effectiveHost(r Request) string {
	erhn := requestHost(r)
	if !strings.Contains(erhn, ".") {
		erhn += ".local"
	}
	return erhn
}

// requestPath returns the normalized path of the request URL. A path
// that does not start with '/' is fixed up.
func requestPath(u *url.URL) string {
	p := normalizePath(u.EscapedPath())
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// requestPort returns the port of the request, "80" if none is declared.
func requestPort(r Request) string {
	if p := r.Port(); p != "" {
		return p
	}
	return "80"
}
