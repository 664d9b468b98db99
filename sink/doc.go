// SPDX-License-Identifier: EPL-2.0

// Package sink drives the consumer side of a relay in software. It reads
// the buffer layout once, then asks for one chunk after another and writes
// each to an io.Writer, optionally taking the chunk's playing time between
// requests.
//
// A run ends when the relay returns a Done chunk, when the Drain channel
// is closed and the relay has nothing left but silence, or when the
// context ends.
package sink
