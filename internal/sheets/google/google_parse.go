package google

import (
	"fmt"
	"strconv"
	"strings"
)

// parseMirrorIDs extracts posting ids from a values matrix (as returned by the
// Sheets API). The first row must be the header; blank rows are skipped.
func parseMirrorIDs(values [][]interface{}) ([]int64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "ID")
	if colID == -1 {
		return nil, fmt.Errorf("unexpected mirror header: missing ID; got headers=%v", headers)
	}

	ids := make([]int64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		raw := strings.TrimSpace(safeGet(toStrings(values[i]), colID))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", i+1, raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
