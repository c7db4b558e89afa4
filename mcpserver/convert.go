package mcpserver

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const notAvailable = "N/A"

type spaceRecord struct {
	Key  string `mapstructure:"key"`
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

type pageRecord struct {
	ID    string `mapstructure:"id"`
	Title string `mapstructure:"title"`
}

type searchRecord struct {
	Type  string `mapstructure:"type"`
	Title string `mapstructure:"title"`
	Space struct {
		Key string `mapstructure:"key"`
	} `mapstructure:"space"`
}

type serverInfoRecord struct {
	Version        string      `mapstructure:"version"`
	VersionNumbers interface{} `mapstructure:"versionNumbers"`
	BuildNumber    string      `mapstructure:"buildNumber"`
	BaseURL        string      `mapstructure:"baseUrl"`
	URL            string      `mapstructure:"url"`
}

// decode copies a loosely typed JSON value into out. Numbers become strings
// where a string is expected and unknown keys are ignored.
func decode(input, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// extractList returns the listing carried by resp. A mapping yields the
// value under the first of keys that is present; anything else is taken to
// be the list itself. Unrecognised shapes yield an empty list.
func extractList(resp interface{}, keys ...string) []interface{} {
	if m, ok := resp.(map[string]interface{}); ok {
		for _, key := range keys {
			if v, ok := m[key]; ok {
				list, _ := v.([]interface{})
				return list
			}
		}
		return nil
	}
	list, _ := resp.([]interface{})
	return list
}

// decodeList decodes every item of list into a T.
func decodeList[T any](list []interface{}, what string) ([]T, error) {
	out := make([]T, 0, len(list))
	for i, item := range list {
		var rec T
		if err := decode(item, &rec); err != nil {
			return nil, fmt.Errorf("decode %s %d: %w", what, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// lookup walks nested mappings along path.
func lookup(v interface{}, path ...string) (interface{}, bool) {
	for _, key := range path {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if v, ok = m[key]; !ok {
			return nil, false
		}
	}
	return v, true
}

// isEmpty reports whether a JSON value is null or an empty string, list or
// mapping.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}

func orNA(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return notAvailable
}

// truncateContent returns the first max characters of s followed by an
// ellipsis. The ellipsis is always appended, even when s is shorter than max.
func truncateContent(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes) + "..."
}
