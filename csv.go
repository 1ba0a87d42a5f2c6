package ddup

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
)

// newDirListFromCSV imports a WizTree export (spec §4.4, BackendWizTree).
// WizTree prefixes its export with a vendor banner line before the real CSV
// header, so the first line is always discarded before handing the rest to
// encoding/csv.
func newDirListFromCSV(path, pattern string, opts MatchOptions) (*DirList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errIO(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		// The vendor banner line; its content is never inspected.
		return nil, errIO(err)
	}
	header, err := r.Read()
	if err != nil {
		return nil, errIO(err)
	}

	nameCol, sizeCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "File Name":
			nameCol = i
		case "Size":
			sizeCol = i
		}
	}
	if nameCol == -1 || sizeCol == -1 {
		return nil, errOther("wiztree CSV missing \"File Name\" or \"Size\" column")
	}

	matcher, err := newPathMatcher(pattern, opts)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if nameCol >= len(row) || sizeCol >= len(row) {
			continue
		}
		name := strings.Trim(row[nameCol], `"`)
		if strings.HasSuffix(name, `\`) {
			// WizTree marks directory rows with a trailing separator.
			continue
		}
		size, err := strconv.ParseUint(row[sizeCol], 10, 64)
		if err != nil {
			continue
		}
		if !matcher.Match(name) {
			continue
		}
		entries = append(entries, Entry{Path: name, Size: size})
	}

	return &DirList{entries: entries}, nil
}
