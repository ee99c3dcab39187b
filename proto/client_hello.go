package proto

// ClientHello is the first message a client sends: name/version/revision
// identification followed by the database/user/password to authenticate
// with.
type ClientHello struct {
	Name            string
	Major, Minor    int
	ProtocolVersion int

	Database string
	User     string
	Password string
}

// Encode writes the discriminator and payload.
func (h ClientHello) Encode(b *Buffer) {
	ClientCodeHello.Encode(b)
	b.PutString(h.Name)
	b.PutUVarInt(uint64(h.Major))
	b.PutUVarInt(uint64(h.Minor))
	b.PutUVarInt(uint64(h.ProtocolVersion))
	b.PutString(h.Database)
	b.PutString(h.User)
	b.PutString(h.Password)
}
