//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"bufio"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/errgo.v1"

	"github.com/tocha688/lwpcookiejar/internal/httpdate"
)

// LWPFormat is the libwww-perl cookie file format: a "#LWP-Cookies-1.0"
// line followed by one "Set-Cookie3:" line per cookie. It keeps every
// field of a cookie. It is not known to be understood by any browser.
var LWPFormat Codec = lwpFormat{}

const (
	lwpMagic  = "#LWP-Cookies-1.0"
	lwpHeader = "Set-Cookie3:"
)

var lwpMagicRegexp = regexp.MustCompile(`^#LWP-Cookies-(\d+\.\d+)`)

// setCookie3Fields holds the attribute names that carry cookie fields
// in a "Set-Cookie3:" line.
var setCookie3Fields = map[string]bool{
	"path":      true,
	"domain":    true,
	"port":      true,
	"path_spec": true,
	"secure":    true,
	"expires":   true,
	"discard":   true,
	"version":   true,
}

type lwpFormat struct{}

// setCookie3Line returns the "Set-Cookie3:" line describing c.
func setCookie3Line(c *Cookie) string {
	h := []Pair{
		{Key: c.Name, Value: c.Value, HasValue: true},
		{Key: "path", Value: c.Path, HasValue: true},
		{Key: "domain", Value: c.Domain, HasValue: true},
	}
	if c.Port != "" {
		h = append(h, Pair{Key: "port", Value: c.Port, HasValue: true})
	}
	if c.PathSpecified {
		h = append(h, Pair{Key: "path_spec"})
	}
	if c.Secure {
		h = append(h, Pair{Key: "secure"})
	}
	if c.Expires != 0 {
		h = append(h, Pair{Key: "expires", Value: httpdate.FormatISOZ(c.Expires), HasValue: true})
	}
	if c.Discard {
		h = append(h, Pair{Key: "discard"})
	}
	for _, p := range c.Extra.Pairs() {
		// An extra attribute must not be read back as a field.
		if !setCookie3Fields[p.Key] {
			h = append(h, p)
		}
	}
	h = append(h, Pair{Key: "version", Value: strconv.Itoa(c.Version), HasValue: true})
	return lwpHeader + " " + JoinHeaderWords([][]Pair{h})
}

func (lwpFormat) Encode(w io.Writer, cookies iter.Seq[*Cookie], opts EncodeOptions) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(lwpMagic + "\n")
	for c := range cookies {
		if c.Discard && !opts.IgnoreDiscard {
			continue
		}
		bw.WriteString(setCookie3Line(c))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errgo.Notef(err, "cannot write cookies")
	}
	return nil
}

func (lwpFormat) Decode(r io.Reader, s Sink) error {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || !lwpMagicRegexp.MatchString(sc.Text()) {
		if err := sc.Err(); err != nil {
			return errgo.Notef(err, "cannot read cookies")
		}
		return errgo.WithCausef(nil, ErrBadFormat, "file does not seem to contain cookies")
	}
	for lineno := 2; sc.Scan(); lineno++ {
		line := sc.Text()
		if !strings.HasPrefix(line, lwpHeader) {
			continue
		}
		for _, set := range SplitHeaderWords([]string{strings.TrimSpace(line[len(lwpHeader):])}) {
			c, err := parseSetCookie3(set)
			if err != nil {
				return errgo.WithCausef(nil, ErrBadFormat, "invalid Set-Cookie3 line %d: %v", lineno, err)
			}
			s.PutCookie(c)
		}
	}
	if err := sc.Err(); err != nil {
		return errgo.Notef(err, "cannot read cookies")
	}
	return nil
}

// parseSetCookie3 builds a cookie from the attributes of one
// "Set-Cookie3:" cookie.
func parseSetCookie3(set []Pair) (*Cookie, error) {
	c := &Cookie{
		Name:  set[0].Key,
		Value: set[0].Value,
	}
	for _, p := range set[1:] {
		switch p.Key {
		case "path_spec":
			c.PathSpecified = true
		case "secure":
			c.Secure = true
		case "discard":
			c.Discard = true
		case "version":
			v, err := strconv.Atoi(p.Value)
			if err != nil || v < 0 {
				return nil, errgo.Newf("bad version %q", p.Value)
			}
			c.Version = v
		case "port":
			c.Port = p.Value
		case "path":
			c.Path = p.Value
		case "domain":
			c.Domain = p.Value
		case "expires":
			// An unparsable date leaves the cookie without expiry.
			if t, ok := httpdate.Parse(p.Value); ok {
				c.Expires = t
			}
		default:
			if c.Extra == nil {
				c.Extra = NewAttributes()
			}
			c.Extra.add(p)
		}
	}
	if c.Domain == "" || !strings.HasPrefix(c.Path, "/") {
		return nil, errgo.Newf("cookie %q has no domain or path", c.Name)
	}
	return c, nil
}
