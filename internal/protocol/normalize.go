// internal/protocol/normalize.go
package protocol

import "sort"

// NormalizeResult reshapes a result payload into its ergonomic return
// value. The rules mirror the firmware's response conventions and are part
// of the wire contract:
//
//   - a single entry collapses to its bare value
//   - a mapping whose values are all empty strings is a flag response and
//     becomes the sorted list of flag names
//   - anything else is returned unchanged
func NormalizeResult(result Result) any {
	if len(result) == 0 {
		return result
	}
	if len(result) == 1 {
		for _, v := range result {
			return v
		}
	}

	allEmpty := true
	for _, v := range result {
		s, ok := v.(string)
		if !ok || s != "" {
			allEmpty = false
			break
		}
	}
	if !allEmpty {
		return result
	}

	flags := make([]string, 0, len(result))
	for k := range result {
		flags = append(flags, k)
	}
	sort.Strings(flags)
	return flags
}
