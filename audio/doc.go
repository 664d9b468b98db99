// SPDX-License-Identifier: EPL-2.0

// Package audio holds the producer side building blocks of a stream:
// decoded sources, sample rate and channel conversion, and packing into
// PCM bytes.
//
// # Source
//
// Every decoder and every conversion stage implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Samples are interleaved float32 in [-1,1]. ReadSamples returns the
// number of values written, which may be non-zero together with io.EOF.
//
// # Conversion
//
// Resampler changes the rate with Catmull-Rom cubic interpolation and
// low-pass filters the input when the rate goes down. ChannelMapper mixes
// down by averaging, duplicates mono, and otherwise maps output channel c
// to input channel c modulo the input count. Conform chains the stages a
// source needs to match a target layout:
//
//	src, err := audio.Conform(decoded, 22050, 1)
//
// # Packing
//
// Packer writes float32 samples as little-endian integer PCM of 1 to 4
// bytes, signed or offset binary:
//
//	p, _ := audio.NewPacker(2, true)
//	n := p.Pack(buf, samples)
//
// # Registry
//
// Registry maps file extensions to decoders and is safe for concurrent
// use:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	src, err := reg.Decode("take.WAV", f)
package audio
