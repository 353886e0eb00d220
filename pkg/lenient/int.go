package lenient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Int is an integer that decodes from either a JSON number or a numeric string,
// matching what HTML form inputs post.
type Int struct {
	Value int
	Set   bool
}

// UnmarshalJSON implements [json.Unmarshaler].
func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = Int{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode integer string: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*i = Int{}
			return nil
		}
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid integer %q", raw)
	}

	*i = Int{Value: v, Set: true}
	return nil
}

// MarshalJSON implements [json.Marshaler].
func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}
