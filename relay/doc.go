// SPDX-License-Identifier: EPL-2.0

// Package relay implements a single-producer, single-consumer stream relay
// that feeds sample buffers to a playback driver.
//
// The producer hands over one buffer at a time with Queue and polls IsReady
// for room. The consumer, usually a driver refill callback, calls NextChunk
// every time the hardware has drained the previous buffer:
//
//	r, _ := relay.New(relay.Format{
//	    BytesPerSample: 2,
//	    Signed:         true,
//	    Channels:       2,
//	    SampleRate:     44100,
//	}, false)
//
//	// producer
//	if r.IsReady() {
//	    ok, err := r.Queue(buf)
//	}
//
//	// consumer
//	chunk, err := r.NextChunk(false, 0)
//	play(chunk.Data[:chunk.Length])
//	if chunk.Status == relay.Done {
//	    stop()
//	}
//
// # Hand-off
//
// There is exactly one pending slot. Queue never blocks: when the slot is
// taken it returns false and the producer retries with the same buffer on
// its next tick. NextChunk moves the pending buffer into play and frees the
// slot in a single atomic step, so IsReady is never stale.
//
// # Underruns
//
// When the producer is late NextChunk never returns an empty buffer. A
// non-persistent relay returns a short silence block with Done so the
// driver stops after it. A persistent relay returns a longer silence block
// with MoreData, as many times as needed, and picks up queued data again on
// the next call after Queue succeeds.
//
// # Buffer ownership
//
// Queued buffers are borrowed, never copied. Each accepted buffer gets a
// sequence number (Enqueued); once it leaves play Released advances to it
// and, when configured with WithReleaseNotify, the buffer is sent back on a
// channel. A producer cycling through a small set of buffers refills one
// only after it has been released.
//
// # Real-time constraints
//
// NextChunk, BufferStructure and ResetBuffer do not allocate, lock, log or
// perform I/O. Queue allocates a small record on the producer side.
package relay
