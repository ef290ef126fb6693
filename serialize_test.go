//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/afero"
	"gopkg.in/errgo.v1"
)

func TestNoFilename(t *testing.T) {
	c := qt.New(t)
	j := newTestJar(c, nil)
	for _, f := range []func(string) error{j.Save, j.Load, j.Revert} {
		err := f("")
		c.Assert(errgo.Cause(err), qt.Equals, ErrNoFilename)
	}
}

func TestSaveSetsFilename(t *testing.T) {
	c := qt.New(t)
	fs := afero.NewMemMapFs()
	j := newTestJar(c, &Options{Fs: fs})
	interact(c, j, "http://www.acme.com/", "Set-Cookie: a=b; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(j.Save("one"), qt.IsNil)

	interact(c, j, "http://www.acme.com/", "Set-Cookie: c=d; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(j.Save(""), qt.IsNil)
	data, err := afero.ReadFile(fs, "one")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `#LWP-Cookies-1.0
Set-Cookie3: a=b; path="/"; domain="www.acme.com"; expires="2099-11-09 23:12:40Z"; version=0
Set-Cookie3: c=d; path="/"; domain="www.acme.com"; expires="2099-11-09 23:12:40Z"; version=0
`)
}

func TestLoadMerges(t *testing.T) {
	c := qt.New(t)
	fs := afero.NewMemMapFs()
	err := afero.WriteFile(fs, "cookies", []byte(`#LWP-Cookies-1.0
Set-Cookie3: a=fromfile; path="/"; domain="acme.com"; version=0
Set-Cookie3: b=fromfile; path="/"; domain="acme.com"; version=0
`), 0600)
	c.Assert(err, qt.IsNil)

	j := newTestJar(c, &Options{Fs: fs})
	c.Assert(j.SetCookie(&Cookie{Name: "a", Value: "mine", Domain: "acme.com", Path: "/"}, nil), qt.IsNil)
	c.Assert(j.SetCookie(&Cookie{Name: "c", Value: "mine", Domain: "acme.com", Path: "/"}, nil), qt.IsNil)
	c.Assert(j.Load("cookies"), qt.IsNil)

	var got []string
	for ck := range j.All() {
		got = append(got, ck.Name+"="+ck.Value)
	}
	c.Assert(got, qt.DeepEquals, []string{"a=fromfile", "b=fromfile", "c=mine"})
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)
	j := newTestJar(c, nil)
	err := j.Load("nope")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(isNotExist(err), qt.IsTrue)
}

func TestRevert(t *testing.T) {
	c := qt.New(t)
	fs := afero.NewMemMapFs()
	j := newTestJar(c, &Options{Fs: fs, Filename: "cookies"})
	interact(c, j, "http://www.acme.com/", "Set-Cookie: saved=1; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(j.Save(""), qt.IsNil)
	interact(c, j, "http://www.acme.com/", "Set-Cookie: unsaved=1; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(cookieKeys(j), qt.DeepEquals, []string{"www.acme.com / saved", "www.acme.com / unsaved"})

	c.Assert(j.Revert(""), qt.IsNil)
	c.Assert(cookieKeys(j), qt.DeepEquals, []string{"www.acme.com / saved"})
}

func TestRevertFailureKeepsCookies(t *testing.T) {
	c := qt.New(t)
	fs := afero.NewMemMapFs()
	err := afero.WriteFile(fs, "bad", []byte(`#LWP-Cookies-1.0
Set-Cookie3: ok=1; path="/"; domain="acme.com"; version=0
Set-Cookie3: broken=1; path="/"; domain="acme.com"; version=x
`), 0600)
	c.Assert(err, qt.IsNil)

	j := newTestJar(c, &Options{Fs: fs})
	interact(c, j, "http://www.acme.com/", "Set-Cookie: mine=1")
	err = j.Revert("bad")
	c.Assert(err, qt.ErrorMatches, `bad: invalid Set-Cookie3 line 3: bad version "x"`)
	c.Assert(errgo.Cause(err), qt.Equals, ErrBadFormat)
	c.Assert(cookieKeys(j), qt.DeepEquals, []string{"www.acme.com / mine"})

	err = j.Revert("missing")
	c.Assert(isNotExist(err), qt.IsTrue)
	c.Assert(cookieKeys(j), qt.DeepEquals, []string{"www.acme.com / mine"})
}

func TestCloseAutosave(t *testing.T) {
	c := qt.New(t)
	fs := afero.NewMemMapFs()

	j := newTestJar(c, &Options{Fs: fs, Filename: "cookies"})
	interact(c, j, "http://www.acme.com/", "Set-Cookie: a=b; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(j.Close(), qt.IsNil)
	_, err := fs.Stat("cookies")
	c.Assert(os.IsNotExist(err), qt.IsTrue)

	j = newTestJar(c, &Options{Fs: fs, Filename: "cookies", Autosave: true})
	interact(c, j, "http://www.acme.com/", "Set-Cookie: a=b; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(j.Close(), qt.IsNil)
	j1 := newTestJar(c, &Options{Fs: fs, Filename: "cookies"})
	c.Assert(cookieKeys(j1), qt.DeepEquals, []string{"www.acme.com / a"})
}

func TestSaveLoadOSFileSystem(t *testing.T) {
	c := qt.New(t)
	file := filepath.Join(c.TempDir(), "cookies.lwp")
	now := func() time.Time { return testNow }

	j, err := New(&Options{Filename: file, Now: now})
	c.Assert(err, qt.IsNil)
	interact(c, j, "http://www.acme.com/", "Set-Cookie: a=b; expires=Wednesday, 09-Nov-2099 23:12:40 GMT")
	c.Assert(j.Save(""), qt.IsNil)
	// Saving again must not be stopped by a lock left behind.
	c.Assert(j.Save(""), qt.IsNil)

	j1, err := New(&Options{Filename: file, Now: now})
	c.Assert(err, qt.IsNil)
	c.Assert(j1.String(), qt.Equals, j.String())
}
