package geometry

// IndexBuffer holds triangle indices in one of the three widths render
// pipelines produce. Exactly one of the slices should be populated.
type IndexBuffer struct {
	U8  []uint8
	U16 []uint16
	U32 []uint32
}

// Count returns the number of indices.
func (b *IndexBuffer) Count() int {
	if b == nil {
		return 0
	}
	switch {
	case b.U8 != nil:
		return len(b.U8)
	case b.U16 != nil:
		return len(b.U16)
	default:
		return len(b.U32)
	}
}

// Normalize returns the buffer in a width the physics backend accepts.
// 8-bit input is widened to 16-bit; 16- and 32-bit pass through unchanged.
// Exactly one of the returned slices is non-nil for a non-empty buffer.
func (b *IndexBuffer) Normalize() (idx16 []uint16, idx32 []uint32) {
	if b == nil {
		return nil, nil
	}
	switch {
	case b.U8 != nil:
		widened := make([]uint16, len(b.U8))
		for i, v := range b.U8 {
			widened[i] = uint16(v)
		}
		return widened, nil
	case b.U16 != nil:
		return b.U16, nil
	default:
		return nil, b.U32
	}
}
