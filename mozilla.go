//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

package cookiejar

import (
	"database/sql"
	"fmt"
	"io"
	"iter"

	"github.com/spf13/afero"
	"gopkg.in/errgo.v1"

	_ "modernc.org/sqlite"
)

// MozillaFormat reads the cookies.sqlite database of Firefox and other
// Mozilla browsers. It can only be used to load cookies: Encode always
// fails. Loaded cookies are Netscape protocol cookies.
var MozillaFormat Codec = mozillaFormat{}

type mozillaFormat struct{}

// Recent Firefox versions store expiry times in milliseconds; no
// seconds value will reach this in the lifetime of the format.
const mozillaMillisThreshold = 1e11

func (mozillaFormat) Encode(w io.Writer, cookies iter.Seq[*Cookie], opts EncodeOptions) error {
	return errgo.WithCausef(nil, ErrBadFormat, "cannot save cookies in Mozilla format")
}

func (mozillaFormat) Decode(r io.Reader, s Sink) error {
	// The database engine needs a file of its own to open.
	fs := afero.NewOsFs()
	f, err := afero.TempFile(fs, "", "cookies-*.sqlite")
	if err != nil {
		return errgo.Notef(err, "cannot create temporary file")
	}
	defer fs.Remove(f.Name())
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errgo.Notef(err, "cannot copy cookie database")
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", f.Name()))
	if err != nil {
		return errgo.Notef(err, "cannot open cookie database")
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT name, value, host, path, expiry, isSecure, isHttpOnly
		FROM moz_cookies
		ORDER BY host, path, name
	`)
	if err != nil {
		return errgo.WithCausef(err, ErrBadFormat, "cannot query moz_cookies")
	}
	defer rows.Close()

	now := s.Now()
	for rows.Next() {
		var (
			name, value, host, path string
			expiry                  int64
			isSecure, isHttpOnly    int
		)
		if err := rows.Scan(&name, &value, &host, &path, &expiry, &isSecure, &isHttpOnly); err != nil {
			return errgo.WithCausef(err, ErrBadFormat, "cannot scan moz_cookies row")
		}
		if expiry > mozillaMillisThreshold {
			expiry /= 1000
		}
		if expiry != 0 && expiry <= now {
			continue
		}
		c := &Cookie{
			Name:   name,
			Value:  value,
			Domain: host,
			Path:   path,
			Secure: isSecure != 0,
		}
		if isHttpOnly != 0 {
			c.Extra = NewAttributes()
			c.Extra.SetFlag(httpOnlyAttr)
		}
		var maxAge *int64
		if expiry != 0 {
			d := expiry - now
			maxAge = &d
		}
		if err := s.SetCookie(c, maxAge); err != nil {
			return errgo.WithCausef(nil, ErrBadFormat, "bad cookie %q for %s: %v", name, host, err)
		}
	}
	if err := rows.Err(); err != nil {
		return errgo.Notef(err, "cannot read moz_cookies")
	}
	return nil
}
