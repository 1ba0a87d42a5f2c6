package ddup

import (
	"encoding/json"
	"os"
)

// ExportJSON writes groups to path as a plain JSON array of
// {"size":...,"paths":[...]} objects, no wrapping envelope (spec §6).
func ExportJSON(groups []DuplicateGroup, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errIO(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(groups); err != nil {
		return errIO(err)
	}
	return nil
}
