package style

import "encoding/json"

// parseJSONInto unmarshals a JSON object string (e.g. the value of a
// `stroke="{...}"` attribute) into dst, which should be pre-populated
// with the defaults to merge over.
func parseJSONInto(value string, dst any) error {
	return json.Unmarshal([]byte(value), dst)
}
