package domain

// User is the authenticated backend user, as reported by the auth layer.
// The client only branches on presence or absence; it never manages
// authentication itself.
type User struct {
	// ID is the backend-assigned identifier.
	ID int64

	// Email is the account email, for display.
	Email string
}

// ChunkSession is the backend-stored "last active chunk" record for a
// user and metatext pair. It exists only for authenticated users; the
// local selection store covers the anonymous case.
type ChunkSession struct {
	// UserID identifies the owning user.
	UserID int64

	// MetaTextID identifies the metatext the session belongs to.
	MetaTextID int64

	// LastActiveChunkID is the chunk that was active when last saved.
	LastActiveChunkID int64
}
