package httpx

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

const maxFormBytes = 64 << 10

// formValues reads submitted fields from a urlencoded form or a flat JSON object.
// JSON values are stringified; nested values are rejected.
func formValues(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}

	var raw map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxFormBytes))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}
	vals := url.Values{}
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			vals.Set(k, t)
		case float64:
			vals.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			vals.Set(k, strconv.FormatBool(t))
		default:
			return nil, fmt.Errorf("field %q: unsupported value", k)
		}
	}
	return vals, nil
}
