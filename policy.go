//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// cookieInfo is a cookie as sent by the server, before any decision
// about storing it has been made.
type cookieInfo struct {
	name  string
	value string

	// attrs holds the standard cookie-attributes by lower case name.
	// Only the first occurrence of each counts.
	attrs map[string]Pair

	// rest holds all other cookie-attributes.
	rest *Attributes
}

func (ci *cookieInfo) has(attr string) bool {
	_, ok := ci.attrs[attr]
	return ok
}

// value returns the value of a standard attribute, if it has one.
func (ci *cookieInfo) attr(attr string) (string, bool) {
	p, ok := ci.attrs[attr]
	if !ok || !p.HasValue {
		return "", false
	}
	return p.Value, true
}

// key returns the domain, path and name the server gave the cookie,
// used to match Set-Cookie2 cookies against Set-Cookie ones.
func (ci *cookieInfo) key() [3]string {
	domain, _ := ci.attr("domain")
	path, _ := ci.attr("path")
	return [3]string{domain, path, ci.name}
}

var standardAttrs = map[string]bool{
	"version": true,
	"max-age": true,
	"domain":  true,
	"path":    true,
	"port":    true,
	"discard": true,
	"secure":  true,
}

// normalizedCookieInfo turns the attribute lists of parsed cookie
// headers into cookieInfo values. The first pair of each list is the
// cookie's name and value.
func normalizedCookieInfo(sets [][]Pair) []*cookieInfo {
	infos := make([]*cookieInfo, 0, len(sets))
	for _, set := range sets {
		ci := &cookieInfo{
			name:  set[0].Key,
			value: set[0].Value,
			attrs: make(map[string]Pair),
		}
		for _, p := range set[1:] {
			lc := strings.ToLower(p.Key)
			if !standardAttrs[lc] {
				// Don't lose case distinction for unknown attributes.
				if ci.rest == nil {
					ci.rest = NewAttributes()
				}
				ci.rest.add(p)
				continue
			}
			if ci.has(lc) {
				continue
			}
			p.Key = lc
			if lc == "domain" {
				// RFC 2965 section 3.3.3.
				p.Value = strings.ToLower(p.Value)
			}
			ci.attrs[lc] = p
		}
		infos = append(infos, ci)
	}
	return infos
}

// ExtractCookies stores the cookies set by the Set-Cookie and
// Set-Cookie2 headers of resp, as far as the request req they respond
// to allows. Cookies that do not pass are silently dropped; a bad cookie
// never stops the others from being stored.
//
// If redirect is true, req is taken to be a request to a redirect URL.
// RFC 2965 cookies are not accepted during redirects.
func (j *Jar) ExtractCookies(resp Response, req Request, redirect bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.extractCookies(resp, req, redirect, j.nowUnix())
}

// extractCookies is like ExtractCookies but takes the current time as a
// parameter.
func (j *Jar) extractCookies(resp Response, req Request, redirect bool, now int64) {
	rfc2965Values := resp.HeaderValues("Set-Cookie2")
	nsValues := resp.HeaderValues("Set-Cookie")
	if len(nsValues) == 0 && (len(rfc2965Values) == 0 || j.netscapeOnly) {
		return
	}
	infos := normalizedCookieInfo(SplitHeaderWords(rfc2965Values))
	if len(nsValues) > 0 {
		nsInfos := normalizedCookieInfo(j.parseNetscapeAttrs(nsValues, now))
		if !j.netscapeOnly {
			// RFC 2965 section 9.1: when a Set-Cookie2 and a Set-Cookie
			// header describe the same cookie, only the former counts.
			rfc2965Keys := make(map[[3]string]bool)
			for _, ci := range infos {
				rfc2965Keys[ci.key()] = true
			}
			kept := nsInfos[:0]
			for _, ci := range nsInfos {
				if !rfc2965Keys[ci.key()] {
					kept = append(kept, ci)
				}
			}
			nsInfos = kept
		}
		infos = append(infos, nsInfos...)
	}
	for _, ci := range infos {
		j.setCookieIfOK(ci, req, redirect, now)
	}
}

func (j *Jar) reject(ci *cookieInfo, reason string) {
	j.log.Debug().Str("name", ci.name).Str("reason", reason).Msg("cookie rejected")
}

// parseMaxAge parses a Max-Age value. Fractions are truncated.
func parseMaxAge(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	switch {
	case f > math.MaxInt32*1e6:
		return math.MaxInt32 * 1e6, true
	case f < -math.MaxInt32*1e6:
		return -math.MaxInt32 * 1e6, true
	}
	return int64(f), true
}

// setCookieIfOK decides whether the cookie should be stored and stores
// it if so.
func (j *Jar) setCookieIfOK(ci *cookieInfo, req Request, redirect bool, now int64) {
	erhn := effectiveHost(req)
	reqPath := requestPath(req.URL())
	reqPort := requestPort(req)

	// Version is always set for Netscape cookies, so this must be an
	// invalid Set-Cookie2 header.
	v, ok := ci.attr("version")
	if !ok {
		j.reject(ci, "Set-Cookie2 without version attribute")
		return
	}
	version, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || version < 0 {
		j.reject(ci, "bad version attribute")
		return
	}
	if version > 0 {
		if redirect {
			j.reject(ci, "RFC 2965 cookie disallowed during redirect")
			return
		}
		if j.netscapeOnly {
			j.reject(ci, "RFC 2965 cookie disallowed by user")
			return
		}
	}

	// A Max-Age without a value counts as absent.
	var maxAge *int64
	if s, ok := ci.attr("max-age"); ok {
		n, ok := parseMaxAge(s)
		if !ok {
			j.reject(ci, "bad max-age attribute")
			return
		}
		maxAge = &n
	}

	// Path.
	var path string
	pathSpecified := false
	if p, ok := ci.attr("path"); ok && p != "" {
		pathSpecified = true
		path = normalizePath(p)
		if version == 0 && !PathMatch(reqPath, path) {
			j.reject(ci, "path attribute is not a prefix of the request path")
			return
		}
	} else {
		path = reqPath
		if i := strings.LastIndex(path, "/"); i != -1 {
			if version == 0 {
				// Browsers keep the directory without its trailing slash.
				path = path[:i]
			} else {
				path = path[:i+1]
			}
		}
		if path == "" {
			path = "/"
		}
	}

	// Domain.
	domain, ok := ci.attr("domain")
	if !ok || (version == 0 && (domain == erhn || domain == "."+erhn)) {
		// An explicit Netscape domain such as acme.com must match
		// the host acme.com, which the rules below would turn into
		// .acme.com.
		domain = erhn
	} else {
		if !strings.HasPrefix(domain, ".") {
			// Two-component domains like acme.com could never set
			// cookies otherwise.
			domain = "." + domain
		}
		undotted := domain[1:]
		if !strings.Contains(undotted, ".") && domain != ".local" {
			j.reject(ci, "non-local domain contains no embedded dot")
			return
		}
		if version == 0 {
			if ipv4Regexp.MatchString(domain) {
				j.reject(ci, "IP address illegal as domain")
				return
			}
			if !strings.HasSuffix(erhn, domain) {
				j.reject(ci, "effective request-host does not end with domain")
				return
			}
		} else {
			if !DomainMatch(erhn, domain) {
				j.reject(ci, "effective request-host does not domain-match domain")
				return
			}
			if hostPrefix := erhn[:len(erhn)-len(domain)]; strings.Contains(hostPrefix, ".") {
				j.reject(ci, "host prefix contains a dot")
				return
			}
		}
		if j.psList != nil && j.psList.PublicSuffix(undotted) == undotted {
			j.reject(ci, "domain is a public suffix")
			return
		}
	}
	if j.isBlocked(domain) {
		j.reject(ci, "domain is blocked")
		return
	}

	// Port.
	var port string
	if ci.has("port") {
		p, ok := ci.attr("port")
		if !ok {
			// The cookie may only go back to the port it came from.
			port = reqPort
		} else {
			port = strings.Join(strings.Fields(p), "")
			found := false
			for _, s := range strings.Split(port, ",") {
				if _, err := strconv.Atoi(s); err != nil {
					j.reject(ci, "bad port attribute")
					return
				}
				if s == reqPort {
					found = true
					break
				}
			}
			if !found {
				j.reject(ci, "request port not in port attribute")
				return
			}
		}
	}

	c := &Cookie{
		Version:       version,
		Name:          ci.name,
		Value:         ci.value,
		Domain:        domain,
		Path:          path,
		Port:          port,
		PathSpecified: pathSpecified,
		Secure:        ci.has("secure"),
		Discard:       ci.has("discard"),
		Extra:         ci.rest,
	}
	if j.policy != nil && !j.policy(c) {
		j.reject(ci, "refused by policy")
		return
	}
	if err := j.setCookie(c, maxAge, now); err != nil {
		j.log.Debug().Err(err).Str("name", ci.name).Msg("cookie rejected")
	}
}

// AddCookieHeader sets the Cookie header of req to the cookies due to
// it. Unless the jar hides it, a Cookie2 header is added when the first
// cookie sent is a Netscape one, to tell the server that RFC 2965 is
// understood. Nothing is added when no cookie is due.
//
// If redirect is true, req is taken to be a request to a redirect URL.
// RFC 2965 cookies are not returned during redirects.
func (j *Jar) AddCookieHeader(req Request, redirect bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.addCookieHeader(req, redirect, j.nowUnix())
}

var nonWordRegexp = regexp.MustCompile(`\W`)

// addCookieHeader is like AddCookieHeader but takes the current time as
// a parameter.
func (j *Jar) addCookieHeader(req Request, redirect bool, now int64) {
	cookies := j.cookiesFor(req, redirect, now)
	if len(cookies) == 0 {
		return
	}
	var attrs []string
	// The first cookie decides the version of the whole header.
	if first := cookies[0]; first.Version > 0 {
		attrs = append(attrs, "$Version="+strconv.Itoa(first.Version))
	} else if !j.hideCookie2 {
		req.Header().Set("Cookie2", `$Version="1"`)
	}
	for _, c := range cookies {
		value := c.Value
		// Netscape cookie values go back exactly as they came.
		if c.Version > 0 && nonWordRegexp.MatchString(value) {
			value = quoteValue(value)
		}
		attrs = append(attrs, c.Name+"="+value)
		if c.Version == 0 {
			continue
		}
		if c.PathSpecified {
			attrs = append(attrs, `$Path="`+c.Path+`"`)
		}
		if strings.HasPrefix(c.Domain, ".") {
			attrs = append(attrs, `$Domain="`+c.Domain+`"`)
		}
		if c.Port != "" {
			attrs = append(attrs, `$Port="`+c.Port+`"`)
		}
	}
	req.Header().Set("Cookie", strings.Join(attrs, "; "))
}

// cookiesFor returns the cookies due to req, in the order they should
// be sent.
//
// Starting with the effective request-host, say foo.bar.baz.com, every
// domain that might hold relevant cookies is visited: foo.bar.baz.com,
// .bar.baz.com, bar.baz.com, .baz.com, baz.com. Domains without a
// leading dot derived this way only hold cookies under the Netscape
// protocol. Within each domain the longest paths come first.
func (j *Jar) cookiesFor(req Request, redirect bool, now int64) []*Cookie {
	erhn := effectiveHost(req)
	reqPath := requestPath(req.URL())
	reqPort := requestPort(req)
	secure := req.URL().Scheme == "https"

	var selected []*Cookie
	netscapeDomain := false
	for domain := erhn; strings.Contains(domain, "."); domain, netscapeDomain = nextDomain(domain) {
		paths, ok := j.cookies[domain]
		if !ok {
			// IP addresses must string-compare equal to
			// domain-match, so there is no point going on.
			if ipv4Regexp.MatchString(domain) {
				break
			}
			continue
		}
		for _, path := range j.cookies.pathsLongestFirst(domain) {
			if !PathMatch(reqPath, path) {
				continue
			}
			names := paths[path]
			for _, name := range sortedKeys(names) {
				c := names[name]
				if reason := j.returnCookieOK(c, erhn, reqPort, secure, netscapeDomain, redirect, now); reason != "" {
					j.log.Debug().
						Str("domain", c.Domain).
						Str("path", c.Path).
						Str("name", c.Name).
						Str("reason", reason).
						Msg("cookie not returned")
					continue
				}
				selected = append(selected, c)
			}
		}
	}
	return selected
}

// nextDomain returns the next, more general, domain string in which to
// look for cookies, alternately stripping a leading dot and a leading
// name component. It reports whether the result applies to Netscape
// cookies only:
//
//	a.b.c.net  any cookie
//	.b.c.net   any cookie
//	b.c.net    Netscape cookies only
//	.c.net     any cookie
func nextDomain(domain string) (string, bool) {
	if strings.HasPrefix(domain, ".") {
		return domain[1:], true
	}
	if i := strings.IndexByte(domain, '.'); i >= 0 {
		return domain[i:], false
	}
	return "", false
}

// returnCookieOK decides whether c should be returned to the server.
// The path has already been checked. It returns the reason for refusing
// the cookie, or "" if it may be sent.
func (j *Jar) returnCookieOK(c *Cookie, erhn, reqPort string, secure, netscapeDomain, redirect bool, now int64) string {
	switch {
	case c.Version > 0 && j.netscapeOnly:
		return "RFC 2965 cookie disallowed by user"
	case c.Version > 0 && redirect:
		return "RFC 2965 cookie disallowed during redirect"
	case c.Secure && !secure:
		return "not a secure request"
	case c.expired(now):
		return "expired"
	case c.Port != "" && !portListed(c.Port, reqPort):
		return "request port does not match cookie port"
	case c.Version > 0 && netscapeDomain:
		return "domain applies to Netscape cookies only"
	case j.isBlocked(c.Domain):
		return "domain is blocked"
	case c.Version > 0 && !DomainMatch(erhn, c.Domain):
		return "effective request-host does not domain-match domain"
	case c.Version == 0 && !strings.HasSuffix(erhn, c.Domain):
		return "effective request-host does not end with domain"
	}
	return ""
}

func portListed(ports, port string) bool {
	for _, p := range strings.Split(ports, ",") {
		if p == port {
			return true
		}
	}
	return false
}
