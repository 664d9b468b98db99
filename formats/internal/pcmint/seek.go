// SPDX-License-Identifier: EPL-2.0

package pcmint

import (
	"bytes"
	"fmt"
	"io"
)

// Seekable returns r itself when it can seek. go-audio decoders need to
// seek, so anything else is read into memory first.
func Seekable(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}
	return bytes.NewReader(data), nil
}
