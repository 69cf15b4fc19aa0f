package bind_group_provider

// BufferWrite stages one queue write into a provider's buffer. Effects batch
// their per-frame uniform and instance uploads into a slice of these so the
// renderer can submit them in a single WriteBuffers call before drawing.
type BufferWrite struct {
	// Provider owns the destination buffer.
	Provider BindGroupProvider
	// Binding selects which of the provider's buffers to write.
	Binding int
	// Offset is the destination byte offset within the buffer.
	Offset uint64
	// Data is copied to the GPU; it may be reused once WriteBuffers returns.
	Data []byte
}
