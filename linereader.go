// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxLineLen bounds a single received line, terminator included.
const DefaultMaxLineLen = 8192

// readBufferSize is the read-ahead window of a line reader.
const readBufferSize = 4096

// errDetached is returned by a line reader used after Detach.
var errDetached = errors.New("starttls: line reader detached")

// lineReader frames LF-terminated lines read from one channel.
//
// Bytes of an unfinished line are kept across iox.ErrWouldBlock so a
// retried read resumes where it stopped. The bufio read-ahead may hold
// bytes past the current line; Detach drops them.
type lineReader struct {
	br      *bufio.Reader
	partial []byte
	max     int
}

func newLineReader(ch Channel, max int) *lineReader {
	if max <= 0 {
		max = DefaultMaxLineLen
	}
	return &lineReader{br: bufio.NewReaderSize(ch, readBufferSize), max: max}
}

// readLine returns the next line without its CRLF or LF terminator.
// On iox.ErrWouldBlock the bytes read so far are retained.
// End of stream before any byte is io.EOF; inside a line it is
// io.ErrUnexpectedEOF.
func (r *lineReader) readLine() (string, error) {
	if r.br == nil {
		return "", errDetached
	}
	for {
		chunk, err := r.br.ReadSlice('\n')
		r.partial = append(r.partial, chunk...)
		if len(r.partial) > r.max {
			n := len(r.partial)
			r.partial = r.partial[:0]
			return "", fmt.Errorf("starttls: line too long (%d bytes, max %d)", n, r.max)
		}
		switch {
		case err == nil:
			line := r.partial
			r.partial = r.partial[:0]
			return string(trimEOL(line)), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF && len(r.partial) > 0:
			r.partial = r.partial[:0]
			return "", io.ErrUnexpectedEOF
		default:
			return "", err
		}
	}
}

// detach unbinds the reader from its channel and reports how many
// received bytes were dropped: the read-ahead plus any unfinished line.
// The reader is unusable afterwards.
func (r *lineReader) detach() int {
	if r.br == nil {
		return 0
	}
	n := r.br.Buffered() + len(r.partial)
	r.br = nil
	r.partial = nil
	return n
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}
