package tracer

import "sort"

func sortEvents(entries []Event) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Begin < entries[j].Begin
	})
}
