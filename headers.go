//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tocha688/lwpcookiejar/internal/httpdate"
)

// Pair is a single attribute of a header value as produced by
// SplitHeaderWords. HasValue is false for lone tokens such as
// "secure" or "discard".
type Pair struct {
	Key      string
	Value    string
	HasValue bool
}

// isSpace reports whether c is white space in the sense of the
// HTTP header grammar.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}

func trimRightSpace(s string) string {
	i := len(s)
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return s[:i]
}

// isTokenByte reports whether c may appear in a token.
func isTokenByte(c byte) bool {
	return !isSpace(c) && c != '=' && c != ';' && c != ','
}

// scanToken matches a token (or the attribute half of a parameter) at the
// start of s, ignoring leading white space. Leading '=' characters belong
// to the token.
func scanToken(s string) (token, rest string, ok bool) {
	s = trimLeftSpace(s)
	i := 0
	for i < len(s) && s[i] == '=' {
		i++
	}
	j := i
	for j < len(s) && isTokenByte(s[j]) {
		j++
	}
	if j == i {
		return "", "", false
	}
	return s[:j], s[j:], true
}

// scanEquals consumes optional white space, '=' and optional white space.
func scanEquals(s string) (rest string, ok bool) {
	s = trimLeftSpace(s)
	if !strings.HasPrefix(s, "=") {
		return "", false
	}
	return trimLeftSpace(s[1:]), true
}

// scanQuotedValue matches `= "quoted string"` at the start of s and
// returns the unescaped value. An unterminated quoted string does not
// match.
func scanQuotedValue(s string) (value, rest string, ok bool) {
	s, ok = scanEquals(s)
	if !ok || !strings.HasPrefix(s, `"`) {
		return "", "", false
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			return b.String(), s[i+1:], true
		case '\\':
			if i+1 >= len(s) || s[i+1] == '\n' {
				return "", "", false
			}
			i++
			b.WriteByte(s[i])
		default:
			b.WriteByte(c)
		}
	}
	return "", "", false
}

// scanValue matches `= value` at the start of s where value is a
// possibly empty run of bytes other than ';', ',' and white space.
func scanValue(s string) (value, rest string, ok bool) {
	s, ok = scanEquals(s)
	if !ok {
		return "", "", false
	}
	i := 0
	for i < len(s) && s[i] != ';' && s[i] != ',' && !isSpace(s[i]) {
		i++
	}
	return s[:i], s[i:], true
}

// SplitHeaderWords parses header values into lists of attribute pairs.
//
// Cookies (or, generally, header elements) are separated by ',' and their
// attributes by ';' or white space. Values may be tokens or quoted
// strings in which a backslash escapes the following character. Each value
// in values is parsed independently, as if they had been joined by ','.
//
//	SplitHeaderWords([]string{`foo="bar"; port="80,81"; discard, bar=baz`})
//
// yields [[foo=bar port=80,81 discard] [bar=baz]].
//
// Parsing never fails: anything that cannot be recognised ends the
// current value and whatever has been collected so far is returned.
func SplitHeaderWords(values []string) [][]Pair {
	var result [][]Pair
	for _, s := range values {
		var cur []Pair
	scan:
		for len(s) > 0 {
			if key, rest, ok := scanToken(s); ok {
				p := Pair{Key: key}
				if v, rest1, ok := scanQuotedValue(rest); ok {
					p.Value, p.HasValue, rest = v, true, rest1
				} else if v, rest1, ok := scanValue(rest); ok {
					p.Value, p.HasValue, rest = trimRightSpace(v), true, rest1
				}
				cur = append(cur, p)
				s = rest
				continue
			}
			t := trimLeftSpace(s)
			switch {
			case t == "":
				break scan
			case t[0] == ',':
				if len(cur) > 0 {
					result = append(result, cur)
					cur = nil
				}
				s = t[1:]
			case t[0] == ';':
				s = t[1:]
			default:
				break scan
			}
		}
		if len(cur) > 0 {
			result = append(result, cur)
		}
	}
	return result
}

var wordRegexp = regexp.MustCompile(`^\w+$`)

// quoteValue returns v as a quoted string with '"' and '\' escaped.
func quoteValue(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('"')
	for i := 0; i < len(v); i++ {
		if v[i] == '"' || v[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(v[i])
	}
	b.WriteByte('"')
	return b.String()
}

// JoinHeaderWords is the inverse of SplitHeaderWords. Values that are
// not plain words are quoted.
//
//	JoinHeaderWords([][]Pair{{{Key: "text/plain"}, {Key: "charset", Value: "iso-8859/1", HasValue: true}}})
//
// yields `text/plain; charset="iso-8859/1"`.
func JoinHeaderWords(lists [][]Pair) string {
	var elems []string
	for _, pairs := range lists {
		var attrs []string
		for _, p := range pairs {
			switch {
			case !p.HasValue:
				attrs = append(attrs, p.Key)
			case wordRegexp.MatchString(p.Value):
				attrs = append(attrs, p.Key+"="+p.Value)
			default:
				attrs = append(attrs, p.Key+"="+quoteValue(p.Value))
			}
		}
		if len(attrs) > 0 {
			elems = append(elems, strings.Join(attrs, "; "))
		}
	}
	return strings.Join(elems, ", ")
}

var (
	nsParamSep = regexp.MustCompile(`;\s*`)
	nsValueSep = regexp.MustCompile(`\s*=\s*`)
)

// parseNetscapeAttrs is an ad hoc parser for the cookie-attributes of
// Netscape protocol Set-Cookie headers. Those may contain an unquoted ','
// in the Expires attribute, which SplitHeaderWords would take for the
// start of a new cookie.
//
// Expires is turned into a Max-Age relative to now. Cookies without a
// usable expiry date get the discard flag, and every cookie gets
// version 0.
func (j *Jar) parseNetscapeAttrs(values []string, now int64) [][]Pair {
	var result [][]Pair
	for _, s := range values {
		var attrs []Pair
		expires := false
		for _, param := range nsParamSep.Split(s, -1) {
			if trimRightSpace(param) == "" {
				continue
			}
			var p Pair
			if !strings.Contains(param, "=") {
				p.Key = trimRightSpace(param)
				if len(attrs) > 0 && !strings.EqualFold(p.Key, "secure") {
					j.log.Debug().Str("attribute", p.Key).Msg("unrecognised Netscape protocol boolean cookie-attribute")
				}
			} else {
				kv := nsValueSep.Split(param, 2)
				p = Pair{Key: kv[0], Value: trimRightSpace(kv[1]), HasValue: true}
			}
			if len(attrs) > 0 && strings.EqualFold(p.Key, "expires") {
				if t, ok := httpdate.Parse(p.Value); ok {
					attrs = append(attrs, Pair{Key: "max-age", Value: strconv.FormatInt(t-now, 10), HasValue: true})
					expires = true
				}
				continue
			}
			attrs = append(attrs, p)
		}
		if len(attrs) == 0 {
			continue
		}
		if !expires {
			attrs = append(attrs, Pair{Key: "discard"})
		}
		attrs = append(attrs, Pair{Key: "version", Value: "0", HasValue: true})
		result = append(result, attrs)
	}
	return result
}
