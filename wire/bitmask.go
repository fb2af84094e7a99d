package wire

// BitMask is a packed dense bit vector used for optional/known-field
// presence encoding (spec §3, §6.3). Bit i lives in word i/32, position
// i%32, LSB first.
type BitMask struct {
	words []uint32
}

// NewBitMask returns a BitMask with room for at least size bits.
func NewBitMask(size int) *BitMask {
	n := (size + 31) / 32
	return &BitMask{words: make([]uint32, n)}
}

func (m *BitMask) ensure(word int) {
	if word >= len(m.words) {
		grown := make([]uint32, word+1)
		copy(grown, m.words)
		m.words = grown
	}
}

// SetBit sets or clears bit i.
func (m *BitMask) SetBit(i int, v bool) {
	word, bit := i/32, uint(i%32)
	m.ensure(word)
	if v {
		m.words[word] |= 1 << bit
	} else {
		m.words[word] &^= 1 << bit
	}
}

// GetBit reports whether bit i is set; out-of-range bits read as false.
func (m *BitMask) GetBit(i int) bool {
	word, bit := i/32, uint(i%32)
	if word >= len(m.words) {
		return false
	}
	return m.words[word]&(1<<bit) != 0
}

// WriteTo encodes the mask as int32 word_count followed by that many
// little-endian u32 words.
func (m *BitMask) WriteTo(w *Writer) {
	w.WriteInt32(int32(len(m.words)))
	for _, word := range m.words {
		w.WriteUint32(word)
	}
}

// ReadBitMask decodes a BitMask written by WriteTo.
func ReadBitMask(r *Reader) (*BitMask, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrEndOfStream
	}
	words := make([]uint32, n)
	for i := range words {
		v, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		words[i] = v
	}
	return &BitMask{words: words}, nil
}
