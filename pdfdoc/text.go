// seehuhn.de/go/markup - ink and shape annotations for PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdfdoc

import (
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"seehuhn.de/go/pdf"
)

// TextString encodes s as a PDF text string.  Printable ASCII text is
// stored as is, everything else is stored as UTF-16BE with a byte order
// mark.
func TextString(s string) pdf.String {
	if isPrintableASCII(s) {
		return pdf.String(s)
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	res, _, err := transform.String(enc, s)
	if err != nil {
		return pdf.String(s)
	}
	return pdf.String(res)
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// Date encodes t as a PDF date string.
func Date(t time.Time) pdf.String {
	s := t.Format("D:20060102150405")
	_, offset := t.Zone()
	if offset == 0 {
		return pdf.String(s + "Z")
	}
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h := offset / 3600
	m := (offset % 3600) / 60
	return pdf.String(s + string(sign) + twoDigits(h) + "'" + twoDigits(m) + "'")
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10%10), byte('0' + n%10)})
}
