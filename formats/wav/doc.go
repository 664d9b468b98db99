// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files through
// github.com/go-audio/wav.
//
// Decoder accepts 8, 16, 24 and 32-bit PCM with any channel count and
// rate, and yields float32 samples in [-1,1]. Inputs that cannot seek are
// buffered in memory.
//
//	src, err := wav.Decoder{}.Decode(f)
//
// Writer goes the other way: it takes raw little-endian PCM bytes, the
// layout a relay hands to its consumer, and stores them as a WAV file.
// Write may split samples across calls.
//
//	w, err := wav.NewWriter(out, 44100, 2, 2, true)
//	_, err = w.Write(chunk)
//	err = w.Close()
package wav
