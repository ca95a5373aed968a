package services

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// FlexInt is an integer request field that also accepts a numeric string,
// as sent by HTML form inputs ("45"). Anything else fails with a
// *json.UnmarshalTypeError so the decoder can name the field.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string " + string(data), Type: reflect.TypeOf(*n)}
	}
	*n = FlexInt(v)
	return nil
}
