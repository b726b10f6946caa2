package atomiccell

// Padded is a Cell isolated on its own cache line, for hot words shared by
// many execution units.
type Padded[T Integer] struct { // betteralign:ignore
	_ [sizeOfCacheLine]byte //nolint:unused
	Cell[T]
	_ [sizeOfCacheLine - sizeOfCell]byte //nolint:unused
}
