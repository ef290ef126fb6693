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
)

// NetscapeFormat is the cookies.txt format of the Netscape browser, also
// written by curl and wget. It loses the port, version and
// PathSpecified fields of a cookie; loaded cookies are Netscape protocol
// cookies. Lines prefixed with "#HttpOnly_" hold cookies with the
// HttpOnly attribute. An expiry time of 0 denotes a session cookie.
var NetscapeFormat Codec = netscapeFormat{}

const (
	netscapeHeader = `# Netscape HTTP Cookie File
# http://www.netscape.com/newsref/std/cookie_spec.html
# This is a generated file!  Do not edit.

`
	httpOnlyPrefix = "#HttpOnly_"
	httpOnlyAttr   = "HttpOnly"
)

var netscapeMagicRegexp = regexp.MustCompile(`#( Netscape)? HTTP Cookie File`)

type netscapeFormat struct{}

func boolField(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (netscapeFormat) Encode(w io.Writer, cookies iter.Seq[*Cookie], opts EncodeOptions) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(netscapeHeader)
	for c := range cookies {
		if c.Discard && !opts.IgnoreDiscard {
			continue
		}
		if c.expired(opts.Now) {
			continue
		}
		domain := c.Domain
		if _, _, ok := c.Extra.Get(httpOnlyAttr); ok {
			domain = httpOnlyPrefix + domain
		}
		bw.WriteString(strings.Join([]string{
			domain,
			boolField(strings.HasPrefix(c.Domain, ".")),
			c.Path,
			boolField(c.Secure),
			strconv.FormatInt(c.Expires, 10),
			c.Name,
			c.Value,
		}, "\t"))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errgo.Notef(err, "cannot write cookies")
	}
	return nil
}

func (netscapeFormat) Decode(r io.Reader, s Sink) error {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || !netscapeMagicRegexp.MatchString(sc.Text()) {
		if err := sc.Err(); err != nil {
			return errgo.Notef(err, "cannot read cookies")
		}
		return errgo.WithCausef(nil, ErrBadFormat, "file does not look like a Netscape format cookies file")
	}
	now := s.Now()
	for lineno := 2; sc.Scan(); lineno++ {
		// The value may be empty, so only the line ending goes.
		line := strings.TrimRight(strings.TrimLeft(sc.Text(), " \t"), "\r")
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = line[len(httpOnlyPrefix):]
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "$") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return errgo.WithCausef(nil, ErrBadFormat, "line %d: want 7 fields, got %d", lineno, len(fields))
		}
		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return errgo.WithCausef(nil, ErrBadFormat, "line %d: bad expiry time %q", lineno, fields[4])
		}
		c := &Cookie{
			Domain: fields[0],
			Path:   fields[2],
			Secure: fields[3] == "TRUE",
			Name:   fields[5],
			Value:  fields[6],
		}
		if httpOnly {
			c.Extra = NewAttributes()
			c.Extra.SetFlag(httpOnlyAttr)
		}
		var maxAge *int64
		if expires != 0 {
			d := expires - now
			maxAge = &d
		}
		if err := s.SetCookie(c, maxAge); err != nil {
			return errgo.WithCausef(nil, ErrBadFormat, "line %d: %v", lineno, err)
		}
	}
	if err := sc.Err(); err != nil {
		return errgo.Notef(err, "cannot read cookies")
	}
	return nil
}
