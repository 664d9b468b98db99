// SPDX-License-Identifier: EPL-2.0

// Package audstream streams decoded audio to a real-time consumer through
// a lock-free single slot relay.
//
// The pieces live in subpackages:
//
//   - relay: the hand-off between one producer and one consumer, which
//     never blocks the consumer and plays silence on underrun
//   - audio: sources, rate and channel conversion, PCM packing
//   - formats/...: WAV, AIFF, MP3 and Ogg Vorbis decoders
//   - feed: the producer loop that keeps the relay supplied
//   - sink: a software consumer that writes chunks to an io.Writer
//   - metrics: Prometheus export of relay counters
//
// Play wires them together:
//
//	r, _ := relay.New(relay.Format{BytesPerSample: 2, Signed: true, Channels: 2, SampleRate: 44100}, true)
//	src, _ := wav.Decoder{}.Decode(f)
//	err := audstream.Play(ctx, src, r, out, audstream.Options{})
//
// With a persistent relay Play returns once every source sample has been
// written. With a one-shot relay playback ends at the first underrun, and
// Play reports ErrStoppedEarly if data was still coming.
package audstream
