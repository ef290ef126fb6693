//版权所有 2012 The Go 作者。版权所有。
//此源代码的使用受 BSD 风格的约束
//可以在 LICENSE 文件中找到的许可证。

// Package httpdate converts between the date strings found in cookie
// headers and cookie files and Unix epoch seconds.
//
// Parsing is liberal: servers have never agreed on a single date format
// for the Expires cookie-attribute.
package httpdate

import (
	"strings"
	"time"
)

// layouts holds the accepted date formats, most common first.
// Dates without a zone are taken to be UTC.
var layouts = []string{
	time.RFC1123,                    // Sun, 06 Nov 1994 08:49:37 GMT
	"Mon, 02-Jan-2006 15:04:05 MST", // Netscape cookie_spec
	"Mon, 02-Jan-06 15:04:05 MST",
	"Monday, 02-Jan-06 15:04:05 MST", // RFC 850
	"Monday, 02-Jan-2006 15:04:05 MST",
	time.ANSIC, // Sun Nov  6 08:49:37 1994
	"Mon Jan _2 15:04:05 2006 MST",
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
	"02-Jan-2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05Z", // written by FormatISOZ
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"Jan 2 2006",
}

// zoneOffsets holds the offsets from UTC, in hours, of the zone
// abbreviations time.Parse cannot resolve on its own.
var zoneOffsets = map[string]int{
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
}

// Parse returns the epoch seconds represented by s and reports whether
// s could be understood.
func Parse(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// "UT" and "Z" are spelled in various ways; MST layouts only know
	// zone abbreviations they can look up, so normalise the common ones.
	s = strings.Replace(s, " UTC", " GMT", 1)
	if strings.HasSuffix(s, " UT") || strings.HasSuffix(s, " Z") {
		s = s[:strings.LastIndexByte(s, ' ')] + " GMT"
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// An unknown abbreviation parses with a zero offset.
		if name, offset := t.Zone(); offset == 0 {
			if hours, ok := zoneOffsets[name]; ok {
				t = t.Add(-time.Duration(hours) * time.Hour)
			}
		}
		if t.Year() < 1970 {
			return 0, false
		}
		return t.Unix(), true
	}
	return 0, false
}

// FormatISOZ formats epoch seconds as "YYYY-MM-DD hh:mm:ssZ" in UTC.
func FormatISOZ(secs int64) string {
	return time.Unix(secs, 0).UTC().Format("2006-01-02 15:04:05Z")
}
