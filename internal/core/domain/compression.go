package domain

// ChunkCompression is a named alternate rendering of a chunk's text,
// for example "like I'm 5". Compressions have an independent lifecycle
// from chunks; a chunk can carry many.
type ChunkCompression struct {
	// ID is the backend-assigned identifier.
	ID int64

	// ChunkID links to the owning chunk.
	ChunkID int64

	// Title names the compression style.
	Title string

	// CompressedText is the rendered alternate text.
	CompressedText string
}

// CompressionStyle describes an available compression style a user can
// request a rendering in.
type CompressionStyle struct {
	// Title is the style's name, passed verbatim to generation.
	Title string

	// Description explains what the style produces.
	Description string
}
