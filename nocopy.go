package syncscope

// NoCopy may be embedded into structs which must not be copied after first
// use. It is picked up by the copylocks checker of go vet.
type NoCopy struct{}

// Lock is a no-op used by the copylocks checker.
func (*NoCopy) Lock() {}

// Unlock is a no-op used by the copylocks checker.
func (*NoCopy) Unlock() {}
