//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"bufio"
	"io"
	"iter"

	"gopkg.in/errgo.v1"
)

// Codec reads and writes cookie files in one particular format.
type Codec interface {
	// Encode writes the given cookies to w.
	Encode(w io.Writer, cookies iter.Seq[*Cookie], opts EncodeOptions) error

	// Decode reads cookies from r and hands them to s. The returned
	// error has ErrBadFormat as its cause when r is not in the
	// format of the codec.
	Decode(r io.Reader, s Sink) error
}

// EncodeOptions holds the parameters of Codec.Encode.
type EncodeOptions struct {
	// Now holds the current time in seconds since the epoch.
	Now int64

	// IgnoreDiscard causes cookies marked for discard to be written
	// too.
	IgnoreDiscard bool
}

// Sink receives the cookies read by Codec.Decode.
type Sink interface {
	// SetCookie stores c as Jar.SetCookie does.
	SetCookie(c *Cookie, maxAge *int64) error

	// PutCookie stores c exactly as given, keeping c.Expires.
	PutCookie(c *Cookie)

	// Now returns the current time in seconds since the epoch.
	Now() int64
}

// jarSink is the Sink the jar loads files through. The jar's mutex is
// held by the caller.
type jarSink struct {
	j   *Jar
	now int64
}

func (s jarSink) SetCookie(c *Cookie, maxAge *int64) error {
	return s.j.setCookie(c, maxAge, s.now)
}

func (s jarSink) PutCookie(c *Cookie) {
	c = c.clone()
	s.j.log.Debug().
		Str("domain", c.Domain).
		Str("path", c.Path).
		Str("name", c.Name).
		Msg("loaded cookie")
	s.j.cookies.put(c)
}

func (s jarSink) Now() int64 {
	return s.now
}

// SniffFormat reads the first line of r and returns the text codec
// whose magic line it carries.
func SniffFormat(r io.Reader) (Codec, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errgo.Notef(err, "cannot read magic line")
	}
	switch {
	case lwpMagicRegexp.MatchString(line):
		return LWPFormat, nil
	case netscapeMagicRegexp.MatchString(line):
		return NetscapeFormat, nil
	}
	return nil, errgo.WithCausef(nil, ErrBadFormat, "unknown cookie file format")
}
