package ddup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "wiztree.csv")
	content := ""
	for _, l := range lines {
		content += l + "\r\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %s", err)
	}
	return path
}

func TestNewDirListFromCSVSkipsVendorHeaderAndDirs(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir,
		`WizTree 4.15,,`,
		`"File Name","Size","Allocated","Modified"`,
		`"C:\dir\",0,0,2024-01-01`,
		`"C:\dir\file.txt",1234,4096,2024-01-01`,
	)

	list, err := NewDirList(path, "", MatchOptions{CaseSensitive: true}, BackendWizTree)
	if err != nil {
		t.Fatalf("NewDirList: %s", err)
	}

	entries := list.Entries()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry (directory row dropped), got %d: %+v", len(entries), entries)
	}
	if entries[0].Path != `C:\dir\file.txt` || entries[0].Size != 1234 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestNewDirListFromCSVMissingColumnsErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir,
		`WizTree 4.15,,`,
		`"Name","Bytes"`,
		`"x",1`,
	)

	if _, err := NewDirList(path, "", MatchOptions{}, BackendWizTree); err == nil {
		t.Fatal("expected an error for a CSV missing required columns")
	}
}

func TestNewDirListFromCSVAppliesGlob(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir,
		`WizTree 4.15,,`,
		`"File Name","Size"`,
		`"C:\photos\a.jpg",10`,
		`"C:\docs\b.txt",20`,
	)

	list, err := NewDirList(path, "**.jpg", MatchOptions{CaseSensitive: true, RequireLiteralSeparator: true}, BackendWizTree)
	if err != nil {
		t.Fatalf("NewDirList: %s", err)
	}
	entries := list.Entries()
	if len(entries) != 1 || entries[0].Path != `C:\photos\a.jpg` {
		t.Fatalf("glob filter failed: %+v", entries)
	}
}

func TestPathMatcherLeadingDotOption(t *testing.T) {
	opts := MatchOptions{CaseSensitive: true, RequireLiteralLeadingDot: true}
	m, err := newPathMatcher("*", opts)
	if err != nil {
		t.Fatalf("newPathMatcher: %s", err)
	}
	if m.Match(`C:\dir\.hidden`) {
		t.Fatal("a bare wildcard should not match a leading-dot file when RequireLiteralLeadingDot is set")
	}
	if !m.Match(`C:\dir\visible.txt`) {
		t.Fatal("expected visible.txt to match")
	}
}

func TestPathMatcherCaseInsensitive(t *testing.T) {
	m, err := newPathMatcher("*.JPG", MatchOptions{CaseSensitive: false})
	if err != nil {
		t.Fatalf("newPathMatcher: %s", err)
	}
	if !m.Match(`C:\photos\a.jpg`) {
		t.Fatal("expected case-insensitive match")
	}
}
