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
	"errors"
	"io"

	"seehuhn.de/go/pdf"
)

// NewStream stores a new stream with the given dictionary and data.
// If d.Compress is set, the data is compressed with the best filter the
// PDF version allows.  The dictionary is copied and may be nil.
func (d *Document) NewStream(dict pdf.Dict, data []byte) (pdf.Reference, error) {
	var filters []pdf.Filter
	if d.Compress {
		filters = append(filters, pdf.FilterCompress{})
	}

	ref := d.data.Alloc()
	w, err := d.data.OpenStream(ref, dict, filters...)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return ref, nil
}

// ReadStream returns the decoded data of a stream.
func (d *Document) ReadStream(obj pdf.Object) ([]byte, error) {
	stm, err := d.GetStream(obj)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, errNoStream
	}
	if s, ok := stm.R.(io.Seeker); ok {
		defer s.Seek(0, io.SeekStart)
	}

	r, err := pdf.DecodeStream(d.data, singleFilter(stm), 0)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// singleFilter rewrites a one-element /Filter array as a plain name.  The
// engine expects a /DecodeParms array next to every /Filter array, which
// many writers omit.
func singleFilter(stm *pdf.Stream) *pdf.Stream {
	a, ok := stm.Dict["Filter"].(pdf.Array)
	if !ok || len(a) != 1 {
		return stm
	}
	dict := clone(stm.Dict)
	dict["Filter"] = a[0]
	if parms, ok := dict["DecodeParms"].(pdf.Array); ok {
		if len(parms) == 1 {
			dict["DecodeParms"] = parms[0]
		} else {
			delete(dict, "DecodeParms")
		}
	}
	return &pdf.Stream{Dict: dict, R: stm.R}
}

var errNoStream = errors.New("stream not found")
