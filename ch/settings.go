package ch

import "github.com/chnative/ch/proto"

// Setting is a connection- or query-scoped server setting. Important
// settings cause the server to reject the query outright if it does not
// recognise them, rather than silently ignoring them.
type Setting struct {
	Key       string
	Value     string
	Important bool
}

func toProtoSettings(settings []Setting) []proto.Setting {
	if len(settings) == 0 {
		return nil
	}
	out := make([]proto.Setting, len(settings))
	for i, s := range settings {
		out[i] = proto.Setting{Key: s.Key, Value: s.Value, Important: s.Important}
	}
	return out
}
