//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"iter"
	"sort"

	"github.com/Velocidex/ordereddict"
)

// Cookie is a stored cookie.
//
// The fields are those of the Set-Cookie2 header (RFC 2965); Netscape
// protocol cookies have Version 0.
type Cookie struct {
	Version int
	Name    string
	Value   string

	// Domain is lower case. A leading dot marks a domain cookie,
	// otherwise the cookie belongs to exactly that host.
	Domain string
	Path   string

	// Port holds the comma separated list of ports the cookie may be
	// returned to. Empty means any port.
	Port string

	// PathSpecified records whether the server sent a Path attribute
	// rather than the path being derived from the request URL.
	PathSpecified bool
	Secure        bool

	// Expires holds the expiry time in seconds since the epoch, or 0
	// when no Max-Age or Expires attribute was given.
	Expires int64
	Discard bool

	// Extra holds the non-standard cookie-attributes, like Comment
	// and CommentURL. It may be nil.
	Extra *Attributes
}

// expired reports whether c has an expiry time before now.
func (c *Cookie) expired(now int64) bool {
	return c.Expires != 0 && c.Expires < now
}

// temporary reports whether c should go at the end of a session.
func (c *Cookie) temporary() bool {
	return c.Discard || c.Expires == 0
}

func (c *Cookie) clone() *Cookie {
	c1 := *c
	c1.Extra = c.Extra.clone()
	return &c1
}

// Attributes is an ordered set of cookie-attributes. Attributes
// given without a value are recorded as flags.
type Attributes struct {
	dict *ordereddict.Dict
}

// NewAttributes returns an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{dict: ordereddict.NewDict()}
}

// Set records the attribute name with the given value, replacing any
// previous value.
func (a *Attributes) Set(name, value string) {
	a.dict.Set(name, value)
}

// SetFlag records the attribute name without a value.
func (a *Attributes) SetFlag(name string) {
	a.dict.Set(name, nil)
}

// Get returns the value of the named attribute. hasValue is false for
// flags, ok is false when the attribute is absent.
func (a *Attributes) Get(name string) (value string, hasValue, ok bool) {
	if a == nil {
		return "", false, false
	}
	v, ok := a.dict.Get(name)
	if !ok {
		return "", false, false
	}
	s, hasValue := v.(string)
	return s, hasValue, true
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return a.dict.Len()
}

// Pairs returns the attributes in insertion order.
func (a *Attributes) Pairs() []Pair {
	if a == nil {
		return nil
	}
	keys := a.dict.Keys()
	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		v, hasValue, _ := a.Get(k)
		pairs = append(pairs, Pair{Key: k, Value: v, HasValue: hasValue})
	}
	return pairs
}

func (a *Attributes) add(p Pair) {
	if p.HasValue {
		a.Set(p.Key, p.Value)
	} else {
		a.SetFlag(p.Key)
	}
}

func (a *Attributes) clone() *Attributes {
	if a == nil {
		return nil
	}
	a1 := NewAttributes()
	for _, p := range a.Pairs() {
		a1.add(p)
	}
	return a1
}

// store holds cookies by domain, then path, then name.
type store map[string]map[string]map[string]*Cookie

func (s store) get(domain, path, name string) *Cookie {
	return s[domain][path][name]
}

func (s store) put(c *Cookie) {
	paths := s[c.Domain]
	if paths == nil {
		paths = make(map[string]map[string]*Cookie)
		s[c.Domain] = paths
	}
	names := paths[c.Path]
	if names == nil {
		names = make(map[string]*Cookie)
		paths[c.Path] = names
	}
	names[c.Name] = c
}

// delete removes the cookie with the given key and reports whether
// there was one. Emptied path and domain maps are pruned.
func (s store) delete(domain, path, name string) bool {
	names := s[domain][path]
	if _, ok := names[name]; !ok {
		return false
	}
	delete(names, name)
	if len(names) == 0 {
		delete(s[domain], path)
	}
	if len(s[domain]) == 0 {
		delete(s, domain)
	}
	return true
}

func (s store) len() int {
	n := 0
	for _, paths := range s {
		for _, names := range paths {
			n += len(names)
		}
	}
	return n
}

// all iterates over the stored cookies ordered by domain, path and name.
// The cookies yielded are the stored ones, not copies.
func (s store) all() iter.Seq[*Cookie] {
	return func(yield func(*Cookie) bool) {
		for _, domain := range sortedKeys(s) {
			paths := s[domain]
			for _, path := range sortedKeys(paths) {
				names := paths[path]
				for _, name := range sortedKeys(names) {
					if !yield(names[name]) {
						return
					}
				}
			}
		}
	}
}

// pathsLongestFirst returns the paths of the given domain in order of
// decreasing length. Paths of equal length are ordered bytewise so
// that the result is deterministic.
func (s store) pathsLongestFirst(domain string) []string {
	paths := sortedKeys(s[domain])
	sort.Stable(byPathLength(paths))
	return paths
}

// byPathLength is a []string sort.Interface that sorts the longest
// path first.
type byPathLength []string

func (s byPathLength) Len() int           { return len(s) }
func (s byPathLength) Less(i, j int) bool { return len(s[i]) > len(s[j]) }
func (s byPathLength) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
