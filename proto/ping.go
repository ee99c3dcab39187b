package proto

// ClientPing is a liveness probe; the server replies with a bare Pong
// discriminator and no payload.
type ClientPing struct{}

// Encode writes the discriminator only.
func (ClientPing) Encode(b *Buffer) { ClientCodePing.Encode(b) }
