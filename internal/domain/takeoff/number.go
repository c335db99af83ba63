package takeoff

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field that tolerates strings, nulls and garbage on the
// wire. Anything that does not parse becomes 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(ParseNumber(s))
		return nil
	}
	*n = Number(ParseNumber(string(data)))
	return nil
}

// Float64 returns the value as a float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// ParseNumber parses a user or backend supplied number. Unparseable and
// non-finite input yields 0.
func ParseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
