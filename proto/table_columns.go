package proto

import "github.com/go-faster/errors"

// TableColumns reports one table's column shape, as sent by the server
// ahead of external-table/temporary-table results. Description is the
// server's `name Type, name Type, ...` textual form; callers that need
// per-column descriptors should parse each comma-separated entry with
// ParseType.
type TableColumns struct {
	TableName   string
	Description string
}

// DecodeTableColumns reads a TableColumns payload (discriminator already
// consumed).
func DecodeTableColumns(r *Reader) (TableColumns, error) {
	var t TableColumns
	var err error
	if t.TableName, err = r.Str(); err != nil {
		return t, errors.Wrap(err, "table name")
	}
	if t.Description, err = r.Str(); err != nil {
		return t, errors.Wrap(err, "description")
	}
	return t, nil
}
