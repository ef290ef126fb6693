//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/juju/go4/lock"
	"github.com/spf13/afero"
	"gopkg.in/errgo.v1"
	"gopkg.in/retry.v1"
)

// Save writes the jar's cookies to the named file in the jar's format,
// replacing its previous contents. If filename is empty the jar's file
// name is used. Cookies marked for discard are only saved if the jar was
// created with IgnoreDiscard set.
//
// On success filename becomes the jar's file name.
func (j *Jar) Save(filename string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.save(filename, j.nowUnix())
}

func (j *Jar) save(filename string, now int64) error {
	filename, err := j.resolveFilename(filename)
	if err != nil {
		return errgo.Mask(err, errgo.Is(ErrNoFilename))
	}
	var buf bytes.Buffer
	opts := EncodeOptions{
		Now:           now,
		IgnoreDiscard: j.ignoreDiscard,
	}
	if err := j.format.Encode(&buf, j.cookies.all(), opts); err != nil {
		return errgo.Mask(err, errgo.Any)
	}
	unlock, err := j.lockFile(filename)
	if err != nil {
		return errgo.Mask(err)
	}
	defer unlock.Close()
	if err := afero.WriteFile(j.fs, filename, buf.Bytes(), 0600); err != nil {
		return errgo.Notef(err, "cannot write cookies")
	}
	j.log.Debug().Str("file", filename).Int("count", j.cookies.len()).Msg("saved cookies")
	j.filename = filename
	return nil
}

// Load adds the cookies stored in the named file to the jar. Stored
// cookies are kept unless the file holds a cookie with the same domain,
// path and name. If filename is empty the jar's file name is used.
//
// The returned error has ErrBadFormat as its cause when the file is not
// in the jar's format. Cookies read before the error was found are kept.
//
// On success filename becomes the jar's file name.
func (j *Jar) Load(filename string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	filename, err := j.resolveFilename(filename)
	if err != nil {
		return errgo.Mask(err, errgo.Is(ErrNoFilename))
	}
	return errgo.Mask(j.load(filename, j.nowUnix()), errgo.Any)
}

// Revert replaces the jar's cookies with those stored in the named file.
// If filename is empty the jar's file name is used. When the file
// cannot be loaded the jar is left unchanged.
func (j *Jar) Revert(filename string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	filename, err := j.resolveFilename(filename)
	if err != nil {
		return errgo.Mask(err, errgo.Is(ErrNoFilename))
	}
	old := j.cookies
	j.cookies = make(store)
	if err := j.load(filename, j.nowUnix()); err != nil {
		j.cookies = old
		return errgo.Mask(err, errgo.Any)
	}
	return nil
}

// Close saves the cookies if the jar was created with Autosave set.
// The jar may still be used afterwards.
func (j *Jar) Close() error {
	if !j.autosave {
		return nil
	}
	return j.Save("")
}

// load reads the cookies in filename into the jar. The jar's mutex is
// held by the caller, or the jar is not yet shared.
func (j *Jar) load(filename string, now int64) error {
	if _, err := j.fs.Stat(filename); err != nil {
		return errgo.Mask(err, os.IsNotExist)
	}
	unlock, err := j.lockFile(filename)
	if err != nil {
		return errgo.Mask(err)
	}
	defer unlock.Close()
	f, err := j.fs.Open(filename)
	if err != nil {
		return errgo.Mask(err, os.IsNotExist)
	}
	defer f.Close()
	before := j.cookies.len()
	if err := j.format.Decode(f, jarSink{j: j, now: now}); err != nil {
		return errgo.NoteMask(err, filename, errgo.Any)
	}
	j.log.Debug().Str("file", filename).Int("count", j.cookies.len()-before).Msg("loaded cookies")
	j.filename = filename
	return nil
}

func (j *Jar) resolveFilename(filename string) (string, error) {
	if filename != "" {
		return filename, nil
	}
	if j.filename == "" {
		return "", ErrNoFilename
	}
	return j.filename, nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(errgo.Cause(err))
}

var lockRetry = retry.LimitTime(3*time.Second, retry.Exponential{
	Initial:  100 * time.Microsecond,
	Factor:   1.5,
	MaxDelay: 100 * time.Millisecond,
})

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// lockFile takes the cross-process lock guarding filename, giving up
// after a while. Files that do not live in the operating system's file
// system are not locked.
func (j *Jar) lockFile(filename string) (io.Closer, error) {
	if !j.lockFiles {
		return nopCloser{}, nil
	}
	path := filename + ".lock"
	for a := retry.Start(lockRetry, nil); a.Next(); {
		locker, err := lock.Lock(path)
		if err == nil {
			return locker, nil
		}
		if !a.More() {
			return nil, errgo.Notef(err, "file locked for too long; giving up")
		}
	}
	panic("unreachable")
}
