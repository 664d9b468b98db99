// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files with github.com/go-audio/aiff.
//
// Samples of 8, 16, 24 and 32 bits are supported at any rate and channel
// count; AIFF-C compression types are not. Samples come out as float32 in
// [-1,1], scaled by the file's bit depth.
//
//	src, err := aiff.Decoder{}.Decode(f)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//		// try another format
//	}
//
// go-audio needs to seek, so a reader without Seek is read into memory
// before decoding starts.
package aiff
