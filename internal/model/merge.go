package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when merge input is not a JSON object.
var ErrNotObject = errors.New("state document is not a JSON object")

// MergeOverDefaults overlays a partial state document onto defaults.
//
// Objects merge key by key at every depth, so a document missing a nested
// key keeps the default for it. Arrays and scalars replace the default
// wholesale. Null values and keys unknown to AppData are ignored.
func MergeOverDefaults(defaults AppData, overlay []byte) (AppData, error) {
	trimmed := bytes.TrimSpace(overlay)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return AppData{}, ErrNotObject
	}

	base, err := toObject(defaults)
	if err != nil {
		return AppData{}, err
	}

	var over map[string]any
	if err := json.Unmarshal(trimmed, &over); err != nil {
		return AppData{}, fmt.Errorf("decode state: %w", err)
	}

	merged, err := json.Marshal(deepMerge(base, over))
	if err != nil {
		return AppData{}, fmt.Errorf("encode merged state: %w", err)
	}

	var out AppData
	if err := json.Unmarshal(merged, &out); err != nil {
		return AppData{}, fmt.Errorf("decode merged state: %w", err)
	}
	return out, nil
}

// Fingerprint returns the canonical serialized form of d. Two states are
// equal when their fingerprints are equal.
func Fingerprint(d AppData) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("fingerprint state: %w", err)
	}
	return string(b), nil
}

func toObject(d AppData) (map[string]any, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	return out, nil
}

func deepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if v == nil {
			continue
		}
		if srcObj, ok := v.(map[string]any); ok {
			if dstObj, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(dstObj, srcObj)
				continue
			}
		}
		out[k] = v
	}
	return out
}
