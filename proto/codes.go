package proto

// ClientCode identifies a client-to-server message kind; it is the
// varint discriminator written ahead of every message's payload.
type ClientCode uint64

const (
	ClientCodeHello  ClientCode = 0
	ClientCodeQuery  ClientCode = 1
	ClientCodeData   ClientCode = 2
	ClientCodeCancel ClientCode = 3
	ClientCodePing   ClientCode = 4
)

// Encode writes the discriminator to b.
func (c ClientCode) Encode(b *Buffer) { b.PutUVarInt(uint64(c)) }

func (c ClientCode) String() string {
	switch c {
	case ClientCodeHello:
		return "Hello"
	case ClientCodeQuery:
		return "Query"
	case ClientCodeData:
		return "Data"
	case ClientCodeCancel:
		return "Cancel"
	case ClientCodePing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// ServerCode identifies a server-to-client message kind.
type ServerCode uint64

const (
	ServerCodeHello                ServerCode = 0
	ServerCodeData                 ServerCode = 1
	ServerCodeException            ServerCode = 2
	ServerCodeProgress             ServerCode = 3
	ServerCodePong                 ServerCode = 4
	ServerCodeEndOfStream          ServerCode = 5
	ServerCodeProfileInfo          ServerCode = 6
	ServerCodeTotals               ServerCode = 7
	ServerCodeExtremes             ServerCode = 8
	ServerCodeTablesStatusResponse ServerCode = 9
	ServerCodeLog                  ServerCode = 10
	ServerCodeTableColumns         ServerCode = 11
	ServerCodeReadTaskRequest      ServerCode = 13
	ServerCodeProfileEvents        ServerCode = 14
)

func (c ServerCode) String() string {
	switch c {
	case ServerCodeHello:
		return "Hello"
	case ServerCodeData:
		return "Data"
	case ServerCodeException:
		return "Exception"
	case ServerCodeProgress:
		return "Progress"
	case ServerCodePong:
		return "Pong"
	case ServerCodeEndOfStream:
		return "EndOfStream"
	case ServerCodeProfileInfo:
		return "ProfileInfo"
	case ServerCodeTotals:
		return "Totals"
	case ServerCodeExtremes:
		return "Extremes"
	case ServerCodeTablesStatusResponse:
		return "TablesStatusResponse"
	case ServerCodeLog:
		return "Log"
	case ServerCodeTableColumns:
		return "TableColumns"
	case ServerCodeReadTaskRequest:
		return "ReadTaskRequest"
	case ServerCodeProfileEvents:
		return "ProfileEvents"
	default:
		return "Unknown"
	}
}

// Compressible reports whether a message of this kind carries a block
// payload that is subject to frame compression when the connection has
// compression enabled. Everything else (Progress, Exception, Pong,
// EndOfStream, TableColumns) is always sent in the clear.
func (c ServerCode) Compressible() bool {
	switch c {
	case ServerCodeData, ServerCodeTotals, ServerCodeExtremes, ServerCodeProfileEvents, ServerCodeLog:
		return true
	default:
		return false
	}
}

// DecodeServerCode reads the leading discriminator of a server message.
func DecodeServerCode(r *Reader) (ServerCode, error) {
	v, err := r.UVarInt()
	if err != nil {
		return 0, err
	}
	return ServerCode(v), nil
}
