package ch

import "github.com/chnative/ch/proto"

// ClientVersion identifies this client to a server during handshake and
// in every query's ClientInfo.
type ClientVersion struct {
	Name  string
	Major int
	Minor int
	Patch int
}

// defaultVersion is the identity this client presents when
// Options.ClientName is left empty.
var defaultVersion = ClientVersion{
	Name:  "chnative",
	Major: proto.DBMSVersionMajor,
	Minor: proto.DBMSVersionMinor,
	Patch: 1,
}
