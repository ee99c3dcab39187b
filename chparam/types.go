package chparam

import "time"

// Date wraps time.Time to select Date (YYYY-MM-DD, no time component)
// during type inference, disambiguating it from DateTime and
// DateTime64.
type Date time.Time

// DateTime wraps time.Time to select DateTime (second precision,
// timezone-naive on the wire) during type inference.
type DateTime time.Time

// Decimal carries a pre-formatted decimal literal for parameters; the
// library does not implement arbitrary-precision arithmetic, only
// Field-dump passthrough of the caller's own text.
type Decimal struct {
	Text string
}

func (d Decimal) String() string { return d.Text }
