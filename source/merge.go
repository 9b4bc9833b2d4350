package source

// MergeIgnoringNullValues merges src into dest. Nested maps merge key by
// key; null values, empty strings and empty lists never replace an
// existing value.
func MergeIgnoringNullValues(src, dest map[string]any) error {
	for k, v := range src {
		current, exists := dest[k]
		if !exists {
			dest[k] = v
			continue
		}

		switch vv := v.(type) {
		case nil:
			continue
		case string:
			if vv == "" {
				continue
			}
		case []any:
			if len(vv) == 0 {
				continue
			}
		case map[string]any:
			if nested, ok := current.(map[string]any); ok {
				if err := MergeIgnoringNullValues(vv, nested); err != nil {
					return err
				}
				continue
			}
		}
		dest[k] = v
	}
	return nil
}
