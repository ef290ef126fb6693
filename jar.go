//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

// Package cookiejar implements a client side HTTP cookie jar that speaks
// both the original Netscape cookie protocol (Set-Cookie) and RFC 2965
// (Set-Cookie2 and Cookie2).
//
// The two central operations are ExtractCookies, which stores the cookies
// a response sets if the request they answer allows it, and
// AddCookieHeader, which attaches the cookies due to a request. Cookies
// may be saved to and loaded from a file in the libwww-perl
// "Set-Cookie3" format or in the Netscape cookies.txt format.
package cookiejar

import (
	"iter"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/errgo.v1"
)

// PublicSuffixList provides the public suffix of a domain. For example:
//   - the public suffix of "example.com" is "com",
//   - the public suffix of "foo1.foo2.foo3.co.uk" is "co.uk", and
//   - the public suffix of "bar.pvt.k12.ma.us" is "pvt.k12.ma.us".
//
// Implementations of PublicSuffixList must be safe for concurrent use by
// multiple goroutines.
//
// The package golang.org/x/net/publicsuffix provides an implementation.
type PublicSuffixList interface {
	// PublicSuffix returns the public suffix of domain.
	PublicSuffix(domain string) string

	// String returns a description of the source of this public suffix
	// list.
	String() string
}

// Options are the options for creating a new Jar.
type Options struct {
	// Filename holds the file cookies are loaded from when the jar
	// is created, and the default file for Save, Load and Revert.
	// If empty, nothing is loaded.
	Filename string

	// Format is the file format used by Save, Load and Revert.
	// If nil, LWPFormat is used.
	Format Codec

	// Fs is the file system Filename lives in. If nil, the
	// operating system's file system is used and files are locked
	// while they are read or written.
	Fs afero.Fs

	// Autosave requests that Close saves the cookies to Filename.
	Autosave bool

	// IgnoreDiscard requests that cookies marked to be discarded
	// are saved nonetheless.
	IgnoreDiscard bool

	// HideCookie2 stops the jar from adding the Cookie2 header that
	// tells servers RFC 2965 is understood.
	HideCookie2 bool

	// NetscapeOnly switches RFC 2965 handling off entirely. It
	// implies HideCookie2.
	NetscapeOnly bool

	// BlockedDomains holds domains cookies are never accepted from
	// nor returned to. All domains that end with one of them are
	// blocked, except that IP addresses must match exactly. The
	// empty string blocks everything.
	BlockedDomains []string

	// PublicSuffixList, if not nil, is used to reject cookies whose
	// Domain attribute names a public suffix such as ".co.uk".
	PublicSuffixList PublicSuffixList

	// Policy, if not nil, is consulted for every cookie that passed
	// all other acceptance checks. The cookie is only stored if it
	// returns true.
	Policy func(c *Cookie) bool

	// Logger receives a debug event for every cookie that is
	// stored, removed or rejected. If nil, nothing is logged.
	Logger *zerolog.Logger

	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
}

// Jar holds cookies. Its methods are safe for concurrent use.
type Jar struct {
	// filename holds the file cookies are saved to and loaded from.
	filename string
	format   Codec
	fs       afero.Fs
	// lockFiles is set when fs is the real file system.
	lockFiles bool

	autosave      bool
	ignoreDiscard bool
	hideCookie2   bool
	netscapeOnly  bool

	psList PublicSuffixList
	policy func(*Cookie) bool
	log    zerolog.Logger
	now    func() time.Time

	// mu locks the remaining fields.
	mu sync.Mutex

	blocked []string

	// cookies holds the cookies by domain, path and name.
	cookies store
}

var noOptions Options

var (
	// ErrMalformedCookie is the cause of the errors SetCookie returns
	// for a cookie that cannot be stored.
	ErrMalformedCookie = errgo.New("cookiejar: malformed cookie")

	// ErrBadFormat is the cause of the errors returned when a cookie
	// file cannot be understood.
	ErrBadFormat = errgo.New("cookiejar: bad cookie file format")

	// ErrNoFilename is returned when a file operation needs a file
	// name and the jar was created without one.
	ErrNoFilename = errgo.New("cookiejar: a file name was not supplied (nor was the jar created with one)")
)

// New returns a new cookie jar. A nil *Options is equivalent to zero
// options.
//
// If o.Filename is set the cookies are loaded from it; New returns an
// error if that fails for any reason other than the file not existing.
func New(o *Options) (*Jar, error) {
	if o == nil {
		o = &noOptions
	}
	j := &Jar{
		filename:      o.Filename,
		format:        o.Format,
		fs:            o.Fs,
		autosave:      o.Autosave,
		ignoreDiscard: o.IgnoreDiscard,
		hideCookie2:   o.HideCookie2 || o.NetscapeOnly,
		netscapeOnly:  o.NetscapeOnly,
		psList:        o.PublicSuffixList,
		policy:        o.Policy,
		log:           zerolog.Nop(),
		now:           o.Now,
		blocked:       append([]string(nil), o.BlockedDomains...),
		cookies:       make(store),
	}
	if j.format == nil {
		j.format = LWPFormat
	}
	if j.fs == nil {
		j.fs = afero.NewOsFs()
		j.lockFiles = true
	}
	if o.Logger != nil {
		j.log = *o.Logger
	}
	if j.now == nil {
		j.now = time.Now
	}
	if j.filename != "" {
		if err := j.load(j.filename, j.nowUnix()); err != nil && !isNotExist(err) {
			return nil, errgo.NoteMask(err, "cannot load cookies", errgo.Any)
		}
	}
	return j, nil
}

func (j *Jar) nowUnix() int64 {
	return j.now().Unix()
}

// BlockedDomains returns the domains the jar refuses to deal with.
func (j *Jar) BlockedDomains() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.blocked...)
}

// SetBlockedDomains replaces the domains the jar refuses to deal with.
func (j *Jar) SetBlockedDomains(domains []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.blocked = append([]string(nil), domains...)
}

func (j *Jar) isBlocked(domain string) bool {
	for _, b := range j.blocked {
		if LiberalDomainMatch(domain, b) {
			return true
		}
	}
	return false
}

// maxExpires is the latest expiry time a cookie can have. Later
// times could not be written to a cookie file.
var maxExpires = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix()

var portRegexp = regexp.MustCompile(`^_?\d+(?:,\d+)*$`)

// SetCookie stores a copy of c without applying any acceptance policy.
//
// maxAge holds the number of seconds the cookie should live. If it is
// nil the cookie gets no expiry time and will go at the end of the
// session; if it is zero or negative any cookie stored under the same
// domain, path and name is removed instead. Expiry times beyond the
// year 9999 are capped. c.Expires is ignored.
//
// The returned error has ErrMalformedCookie as its cause when c has an
// illegal path, name or port.
func (j *Jar) SetCookie(c *Cookie, maxAge *int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.setCookie(c, maxAge, j.nowUnix())
}

// setCookie is like SetCookie but takes the current time as a parameter.
func (j *Jar) setCookie(c *Cookie, maxAge *int64, now int64) error {
	if !strings.HasPrefix(c.Path, "/") {
		return errgo.WithCausef(nil, ErrMalformedCookie, "illegal path %q", c.Path)
	}
	if c.Name == "" || strings.HasPrefix(c.Name, "$") {
		return errgo.WithCausef(nil, ErrMalformedCookie, "illegal name %q", c.Name)
	}
	if c.Port != "" && !portRegexp.MatchString(c.Port) {
		return errgo.WithCausef(nil, ErrMalformedCookie, "illegal port %q", c.Port)
	}
	c = c.clone()
	c.Domain = strings.ToLower(c.Domain)
	c.Expires = 0
	if maxAge != nil {
		if *maxAge <= 0 {
			if j.cookies.delete(c.Domain, c.Path, c.Name) {
				j.log.Debug().
					Str("domain", c.Domain).
					Str("path", c.Path).
					Str("name", c.Name).
					Msg("expiring cookie")
			}
			return nil
		}
		c.Expires = maxExpires
		if *maxAge < maxExpires-now {
			c.Expires = now + *maxAge
		}
	}
	j.log.Debug().
		Str("domain", c.Domain).
		Str("path", c.Path).
		Str("name", c.Name).
		Int("version", c.Version).
		Msg("set cookie")
	j.cookies.put(c)
	return nil
}

// Cookie returns a copy of the cookie stored under the given domain,
// path and name.
func (j *Jar) Cookie(domain, path, name string) (*Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c := j.cookies.get(domain, path, name)
	if c == nil {
		return nil, false
	}
	return c.clone(), true
}

// All returns an iterator over copies of all stored cookies, ordered by
// domain, path and name. Every iteration sees the cookies stored at the
// time it starts.
func (j *Jar) All() iter.Seq[*Cookie] {
	return func(yield func(*Cookie) bool) {
		j.mu.Lock()
		var cookies []*Cookie
		for c := range j.cookies.all() {
			cookies = append(cookies, c.clone())
		}
		j.mu.Unlock()
		for _, c := range cookies {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of stored cookies.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cookies.len()
}

// Clear removes all cookies.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = make(store)
}

// ClearDomain removes all cookies of the given domain and reports
// whether there were any.
func (j *Jar) ClearDomain(domain string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.cookies[domain]; !ok {
		return false
	}
	delete(j.cookies, domain)
	return true
}

// ClearPath removes the cookies stored under the given domain and path
// and reports whether there were any.
func (j *Jar) ClearPath(domain, path string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	paths := j.cookies[domain]
	if _, ok := paths[path]; !ok {
		return false
	}
	delete(paths, path)
	if len(paths) == 0 {
		delete(j.cookies, domain)
	}
	return true
}

// ClearCookie removes a single cookie and reports whether it existed.
func (j *Jar) ClearCookie(domain, path, name string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cookies.delete(domain, path, name)
}

// ClearTemporary removes every cookie that has the discard flag set or
// no expiry time. RFC 2965 asks user agents to do this when they shut
// down.
func (j *Jar) ClearTemporary() {
	j.mu.Lock()
	defer j.mu.Unlock()
	var doomed []*Cookie
	for c := range j.cookies.all() {
		if c.temporary() {
			doomed = append(doomed, c)
		}
	}
	for _, c := range doomed {
		j.cookies.delete(c.Domain, c.Path, c.Name)
	}
}

// String returns the cookies as "Set-Cookie3" lines, one per cookie.
func (j *Jar) String() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var b strings.Builder
	for c := range j.cookies.all() {
		b.WriteString(setCookie3Line(c))
		b.WriteByte('\n')
	}
	return b.String()
}

// SetCookies implements the SetCookies method of the http.CookieJar
// interface. The cookies are offered to the jar as Set-Cookie headers
// of a response to u.
//
// It does nothing if the URL's scheme is not HTTP or HTTPS.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 || (u.Scheme != "http" && u.Scheme != "https") {
		return
	}
	h := make(http.Header)
	for _, c := range cookies {
		if s := c.String(); s != "" {
			h.Add("Set-Cookie", s)
		}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.extractCookies(HeaderResponse(h), newURLRequest(u), false, j.nowUnix())
}

// Cookies implements the Cookies method of the http.CookieJar interface.
// Only the names and values of the cookies due are reported, so RFC 2965
// cookies lose their $Path, $Domain and $Port companions.
//
// It returns an empty slice if the URL's scheme is not HTTP or HTTPS.
func (j *Jar) Cookies(u *url.URL) (cookies []*http.Cookie) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return cookies
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.cookiesFor(newURLRequest(u), false, j.nowUnix()) {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies
}
