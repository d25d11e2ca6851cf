package query

import (
	"sort"

	"github.com/gstlog-visualizer/backend/internal/models"
)

// Options lists the distinct values present in a session, for populating
// filter dropdowns on the client.
type Options struct {
	Categories []string `json:"categories"`
	Levels     []string `json:"levels"`
	PIDs       []uint32 `json:"pids"`
	Threads    []string `json:"threads"`
	Objects    []string `json:"objects"`
}

// CollectOptions extracts deduplicated filter values from a session's
// entries. Output is sorted for stable responses.
func CollectOptions(entries []models.Entry) *Options {
	categories := make(map[string]struct{})
	levels := make(map[string]struct{})
	pids := make(map[uint32]struct{})
	threads := make(map[string]struct{})
	objects := make(map[string]struct{})

	for i := range entries {
		e := &entries[i]
		categories[e.Category] = struct{}{}
		levels[string(e.Level)] = struct{}{}
		pids[e.PID] = struct{}{}
		threads[e.Thread] = struct{}{}
		if e.Object != nil {
			objects[*e.Object] = struct{}{}
		}
	}

	opts := &Options{
		Categories: sortedKeys(categories),
		Levels:     sortedKeys(levels),
		Threads:    sortedKeys(threads),
		Objects:    sortedKeys(objects),
	}

	opts.PIDs = make([]uint32, 0, len(pids))
	for pid := range pids {
		opts.PIDs = append(opts.PIDs, pid)
	}
	sort.Slice(opts.PIDs, func(i, j int) bool { return opts.PIDs[i] < opts.PIDs[j] })

	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
