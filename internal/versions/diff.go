package versions

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/goliatone/go-sitecontent/internal/util"
)

// DiffContent compares two content trees key by key. Nested objects recurse and report dotted
// paths; arrays and scalars are compared by their serialized form, so any change inside an array
// marks the whole field as modified.
func DiffContent(from, to map[string]any) (added, removed, modified []string) {
	added, removed, modified = []string{}, []string{}, []string{}
	diffTrees("", from, to, &added, &removed, &modified)
	slices.Sort(added)
	slices.Sort(removed)
	slices.Sort(modified)
	return added, removed, modified
}

func diffTrees(prefix string, from, to map[string]any, added, removed, modified *[]string) {
	for _, key := range util.SortedKeys(to) {
		path := joinKey(prefix, key)
		before, ok := from[key]
		if !ok {
			*added = append(*added, path)
			continue
		}
		after := to[key]
		beforeMap, beforeIsMap := before.(map[string]any)
		afterMap, afterIsMap := after.(map[string]any)
		if beforeIsMap && afterIsMap {
			diffTrees(path, beforeMap, afterMap, added, removed, modified)
			continue
		}
		if !sameValue(before, after) {
			*modified = append(*modified, path)
		}
	}
	for _, key := range util.SortedKeys(from) {
		if _, ok := to[key]; !ok {
			*removed = append(*removed, joinKey(prefix, key))
		}
	}
}

func sameValue(a, b any) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(left, right)
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
