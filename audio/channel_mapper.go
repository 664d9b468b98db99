// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper changes the channel count of src:
//   - N to 1 averages all channels
//   - 1 to N copies the mono sample into every channel
//   - N to M otherwise maps output channel c to input channel c mod N
type ChannelMapper struct {
	src Source
	out int
	tmp []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src: src,
		out: channels,
	}
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.out }

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.out
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	switch {
	case m.out == 1:
		inv := 1 / float32(in)
		for f := range got {
			var sum float32
			for _, s := range m.tmp[f*in : (f+1)*in] {
				sum += s
			}
			dst[f] = sum * inv
		}
	case in == 1:
		for f := range got {
			s := m.tmp[f]
			for c := range m.out {
				dst[f*m.out+c] = s
			}
		}
	default:
		for f := range got {
			for c := range m.out {
				dst[f*m.out+c] = m.tmp[f*in+c%in]
			}
		}
	}

	return got * m.out, err
}
