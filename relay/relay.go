// SPDX-License-Identifier: EPL-2.0

package relay

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Silence block sizes in bytes, before rounding up to whole frames.
const (
	PersistentSilenceSize = 256
	MinimalSilenceSize    = 8
)

// Status tells the consumer whether playback continues past a chunk.
type Status int

const (
	// MoreData means another chunk should be requested after this one.
	MoreData Status = iota
	// Done means playback stops once this chunk has been played.
	Done
)

func (s Status) String() string {
	switch s {
	case MoreData:
		return "more-data"
	case Done:
		return "done"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Chunk is what the consumer plays next.
type Chunk struct {
	// Data starts at the first sample to play. In single channel mode it
	// starts at the selected channel's first sample and the following
	// samples of that channel are BufferStructure.Spacing samples apart.
	Data []byte
	// Length is the byte length of the whole interleaved buffer.
	Length int
	Status Status
	// Silence is set when the relay substituted its own zero block.
	Silence bool
	// SampleRate is the rate in effect when the chunk was handed out.
	SampleRate int
}

// BufferStructure is the static shape information a driver reads once per
// stream configuration.
type BufferStructure struct {
	SingleBuffer    bool
	Signed          bool
	MaxBufferLength int
	Spacing         int
}

// Stats is a point in time snapshot of the relay counters.
type Stats struct {
	Queued   uint64 // buffers accepted by Queue
	Rejected uint64 // Queue calls refused because a buffer was pending
	Served   uint64 // producer buffers handed to the consumer
	Silence  uint64 // silence blocks handed to the consumer
	Released uint64 // sequence number of the last released buffer
	Pending  bool
}

// block is an immutable record for one buffer; seq is 0 for silence.
type block struct {
	data []byte
	seq  uint64
}

// Relay hands sample buffers from one producer to one real-time consumer
// through a single pending slot.
//
// Queue and IsReady belong to the producer, NextChunk, BufferStructure and
// ResetBuffer to the consumer. Neither side ever blocks the other.
type Relay struct {
	bytesPerSample int
	channels       int
	signed         bool
	persistent     bool
	sampleRate     atomic.Int64

	silence *block

	pending atomic.Pointer[block]
	current atomic.Pointer[block]
	lastLen atomic.Int64
	closed  atomic.Bool

	enqueued atomic.Uint64
	released atomic.Uint64
	rejected atomic.Uint64
	served   atomic.Uint64
	silent   atomic.Uint64

	notify chan<- []byte
	log    zerolog.Logger
}

// Option configures a Relay at construction.
type Option func(*options)

type options struct {
	alloc  func(size int) ([]byte, error)
	notify chan<- []byte
	log    zerolog.Logger
}

// WithLogger sets the logger used for lifecycle events. The consumer path
// never logs.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithReleaseNotify delivers every producer buffer once it has left the
// relay. Sends never block: when ch is full the notification is dropped and
// only Released reflects it.
func WithReleaseNotify(ch chan<- []byte) Option {
	return func(o *options) { o.notify = ch }
}

// WithAllocator replaces the allocator of the silence buffer.
func WithAllocator(alloc func(size int) ([]byte, error)) Option {
	return func(o *options) { o.alloc = alloc }
}

func defaultAlloc(size int) ([]byte, error) { return make([]byte, size), nil }

// SilenceSize returns the silence block length used for f, rounded up so
// that every channel offset falls inside it.
func SilenceSize(f Format, persistent bool) int {
	size := MinimalSilenceSize
	if persistent {
		size = PersistentSilenceSize
	}
	frame := f.FrameSize()
	if frame <= 0 {
		return size
	}
	if rem := size % frame; rem != 0 {
		size += frame - rem
	}
	return size
}

// New builds a relay for the given format. When persistent is true an
// exhausted relay keeps returning silence with MoreData instead of Done.
func New(f Format, persistent bool, opts ...Option) (*Relay, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	o := options{alloc: defaultAlloc, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	size := SilenceSize(f, persistent)
	buf, err := o.alloc(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrAllocationFailure, size, err)
	}
	if len(buf) < size {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrAllocationFailure, len(buf), size)
	}
	buf = buf[:size]
	clear(buf)

	r := &Relay{
		bytesPerSample: f.BytesPerSample,
		channels:       f.Channels,
		signed:         f.Signed,
		persistent:     persistent,
		silence:        &block{data: buf},
		notify:         o.notify,
		log:            o.log,
	}
	r.sampleRate.Store(int64(f.SampleRate))

	r.log.Debug().
		Stringer("format", f).
		Bool("persistent", persistent).
		Int("silence", size).
		Msg("relay created")

	return r, nil
}

// IsReady reports whether Queue would accept a buffer right now.
func (r *Relay) IsReady() bool {
	return !r.closed.Load() && r.pending.Load() == nil
}

// Queue installs buf as the pending buffer. buf must hold whole frames.
// It returns false with a nil
// error when a buffer is already pending; the caller keeps ownership and
// should offer the same buffer again later. An accepted buffer must not be
// modified until Released reaches its sequence number.
func (r *Relay) Queue(buf []byte) (bool, error) {
	if r.closed.Load() {
		return false, ErrInvalidState
	}
	if len(buf) == 0 {
		return false, ErrEmptyBuffer
	}
	if frame := r.bytesPerSample * r.channels; len(buf)%frame != 0 {
		return false, fmt.Errorf("%w: %d bytes with %d byte frames", ErrPartialFrame, len(buf), frame)
	}
	if r.pending.Load() != nil {
		r.rejected.Add(1)
		return false, nil
	}

	b := &block{data: buf, seq: r.enqueued.Load() + 1}
	if !r.pending.CompareAndSwap(nil, b) {
		r.rejected.Add(1)
		return false, nil
	}
	r.enqueued.Store(b.seq)
	if r.closed.Load() {
		// Deinit ran between the check and the store; either it released b
		// or we take it back here. Both ways the caller owns buf again.
		if r.pending.CompareAndSwap(b, nil) {
			r.release(b)
		}
		return false, ErrInvalidState
	}

	return true, nil
}

// NextChunk moves the pending buffer into play, or silence when there is
// none, and returns it. It never blocks, allocates, or returns an empty
// buffer.
func (r *Relay) NextChunk(singleChannel bool, channel int) (Chunk, error) {
	if r.closed.Load() {
		return Chunk{}, ErrInvalidState
	}
	if channel < 0 {
		return Chunk{}, ErrInvalidChannel
	}

	status := MoreData
	next := r.pending.Swap(nil)
	if next == nil {
		next = r.silence
		if !r.persistent {
			status = Done
		}
		r.silent.Add(1)
	} else {
		r.served.Add(1)
	}

	if prev := r.current.Swap(next); prev != nil && prev != next {
		r.release(prev)
	}
	if r.closed.Load() {
		if r.current.CompareAndSwap(next, nil) {
			r.release(next)
		}
		return Chunk{}, ErrInvalidState
	}

	n := len(next.data)
	r.lastLen.Store(int64(n))

	offset := 0
	if singleChannel {
		offset = (channel % r.channels) * r.bytesPerSample
	}

	return Chunk{
		Data:       next.data[offset:],
		Length:     n,
		Status:     status,
		Silence:    next == r.silence,
		SampleRate: int(r.sampleRate.Load()),
	}, nil
}

// release records that b left the relay.
func (r *Relay) release(b *block) {
	if b.seq == 0 {
		return
	}
	for {
		cur := r.released.Load()
		if b.seq <= cur || r.released.CompareAndSwap(cur, b.seq) {
			break
		}
	}
	if r.notify != nil {
		select {
		case r.notify <- b.data:
		default:
		}
	}
}

// BufferStructure reports the layout a driver needs to walk chunks.
// MaxBufferLength is the length of the last chunk handed out, so it is an
// upper bound only as long as the producer keeps its chunk size.
func (r *Relay) BufferStructure(singleChannel bool) (BufferStructure, error) {
	if r.closed.Load() {
		return BufferStructure{}, ErrInvalidState
	}
	spacing := 1
	if singleChannel {
		spacing = r.channels
	}
	return BufferStructure{
		SingleBuffer:    true,
		Signed:          r.signed,
		MaxBufferLength: int(r.lastLen.Load()),
		Spacing:         spacing,
	}, nil
}

// ResetBuffer exists for drivers that rewind on stop or seek. A stream has
// no position to rewind, so it only checks the relay is alive.
func (r *Relay) ResetBuffer(singleChannel bool, channel int) error {
	if r.closed.Load() {
		return ErrInvalidState
	}
	return nil
}

// Deinit drops the current and pending references. Producer buffers are
// released, not freed. Calling it again is a no-op.
func (r *Relay) Deinit() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	if c := r.current.Swap(nil); c != nil {
		r.release(c)
	}
	if p := r.pending.Swap(nil); p != nil {
		r.release(p)
	}
	r.log.Debug().Uint64("released", r.released.Load()).Msg("relay deinitialized")
}

// Deinited reports whether Deinit has been called.
func (r *Relay) Deinited() bool { return r.closed.Load() }

// Close implements io.Closer.
func (r *Relay) Close() error {
	r.Deinit()
	return nil
}

func (r *Relay) SampleRate() (int, error) {
	if r.closed.Load() {
		return 0, ErrInvalidState
	}
	return int(r.sampleRate.Load()), nil
}

// SetSampleRate changes the rate reported with chunks handed out from now
// on. Queued data is not resampled.
func (r *Relay) SetSampleRate(rate int) error {
	if r.closed.Load() {
		return ErrInvalidState
	}
	if rate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, rate)
	}
	r.sampleRate.Store(int64(rate))
	return nil
}

func (r *Relay) BitsPerSample() (int, error) {
	if r.closed.Load() {
		return 0, ErrInvalidState
	}
	return r.bytesPerSample * 8, nil
}

func (r *Relay) Channels() (int, error) {
	if r.closed.Load() {
		return 0, ErrInvalidState
	}
	return r.channels, nil
}

// Format returns the stream layout with the current sample rate.
func (r *Relay) Format() (Format, error) {
	if r.closed.Load() {
		return Format{}, ErrInvalidState
	}
	return Format{
		BytesPerSample: r.bytesPerSample,
		Signed:         r.signed,
		Channels:       r.channels,
		SampleRate:     int(r.sampleRate.Load()),
	}, nil
}

// Persistent reports whether the relay plays silence instead of stopping.
func (r *Relay) Persistent() bool { return r.persistent }

// Enqueued is the sequence number of the last buffer Queue accepted.
func (r *Relay) Enqueued() uint64 { return r.enqueued.Load() }

// Released is the sequence number of the last buffer that left the relay.
// Buffers leave in queue order, so every buffer with a sequence number up
// to Released may be reused by the producer.
func (r *Relay) Released() uint64 { return r.released.Load() }

func (r *Relay) Stats() Stats {
	return Stats{
		Queued:   r.enqueued.Load(),
		Rejected: r.rejected.Load(),
		Served:   r.served.Load(),
		Silence:  r.silent.Load(),
		Released: r.released.Load(),
		Pending:  r.pending.Load() != nil,
	}
}
