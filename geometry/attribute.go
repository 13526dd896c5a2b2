package geometry

// Attribute is a view over a float32 vertex buffer. Render pipelines hand
// these over either packed (one attribute per buffer) or interleaved
// (position/normal/uv sharing one buffer with a stride).
type Attribute struct {
	// Data is the raw buffer in floats.
	Data []float32
	// ItemSize is the number of components per vertex, 3 for positions.
	ItemSize int
	// Stride is the number of floats between consecutive vertices. Zero or
	// ItemSize means the buffer is packed.
	Stride int
	// Offset is the float index of the first component inside a stride.
	Offset int
}

// Count returns the number of vertices addressable through the view.
func (a *Attribute) Count() int {
	if a == nil || a.ItemSize <= 0 || len(a.Data) == 0 {
		return 0
	}
	stride := a.Stride
	if stride <= 0 {
		stride = a.ItemSize
	}
	usable := len(a.Data) - a.Offset
	if usable < a.ItemSize {
		return 0
	}
	return (usable-a.ItemSize)/stride + 1
}

// Packed returns the attribute as a tightly packed float array. Interleaved
// buffers are de-interleaved into a fresh slice; already-packed buffers are
// returned as-is without copying.
func (a *Attribute) Packed() []float32 {
	if a == nil {
		return nil
	}
	stride := a.Stride
	if stride <= 0 {
		stride = a.ItemSize
	}
	if stride == a.ItemSize && a.Offset == 0 {
		return a.Data
	}
	count := a.Count()
	if count == 0 {
		return nil
	}
	out := make([]float32, 0, count*a.ItemSize)
	for i := 0; i < count; i++ {
		base := a.Offset + i*stride
		out = append(out, a.Data[base:base+a.ItemSize]...)
	}
	return out
}
