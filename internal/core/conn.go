package core

// Frame is an encoded event ready for the wire.
type Frame []byte

// ConnID identifies one live transport endpoint.
type ConnID string

// Conn abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}
