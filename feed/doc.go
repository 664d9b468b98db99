// SPDX-License-Identifier: EPL-2.0

// Package feed is the producer half of a relay. A Feeder reads a Source in
// chunks, packs each chunk into one of a small ring of byte buffers and
// queues it, retrying on a ticker while the relay's slot is occupied.
//
// A buffer is written again only after the relay reports it released, so
// the consumer never sees a chunk change under it. With the default ring
// of three buffers one can be playing, one pending and one being filled.
package feed
