// Package replica reconciles the on-device entity collections with the
// remote authoritative store: the startup merge, and the consistency repair
// that re-derives vehicle status from movement state after every merge.
package replica

// MergeCollection reconciles two replicas of one collection. The remote
// version wins for any id present in both (last-writer-wins at whole-record
// granularity, no field-level merge); local-only records survive, which
// preserves entities created while offline and not yet propagated. The result
// keeps remote order followed by surviving local records.
func MergeCollection[T any](remote, local []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(remote))
	merged := make([]T, 0, len(remote)+len(local))

	for _, item := range remote {
		seen[id(item)] = struct{}{}
		merged = append(merged, item)
	}

	for _, item := range local {
		if _, ok := seen[id(item)]; ok {
			continue
		}
		merged = append(merged, item)
	}

	return merged
}
