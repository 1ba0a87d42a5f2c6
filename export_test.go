package ddup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestExportJSONNoEnvelope(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dups.json")

	groups := []DuplicateGroup{
		{Size: 1024, Paths: []string{`C:\a`, `C:\b`}},
	}
	if err := ExportJSON(groups, out); err != nil {
		t.Fatalf("ExportJSON: %s", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %s", err)
	}

	var decoded []DuplicateGroup
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not a bare JSON array: %s", err)
	}
	if len(decoded) != 1 || decoded[0].Size != 1024 {
		t.Fatalf("roundtrip mismatch: %+v", decoded)
	}
}
