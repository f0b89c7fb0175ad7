package influence

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// Amount is a dollar figure. The API reports totals as numbers, as quoted
// decimal strings, or as null; all decode to a float and null or empty
// strings decode to zero.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "influence: decode amount string")
		}
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return eris.Wrapf(err, "influence: parse amount %q", s)
		}
		*a = Amount(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return eris.Wrap(err, "influence: decode amount")
	}
	*a = Amount(f)
	return nil
}

// Int truncates the amount toward zero.
func (a Amount) Int() int64 {
	return int64(a)
}
