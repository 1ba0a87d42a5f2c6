package ddup

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func mustWrite(t *testing.T, dir, name string, content []byte) Entry {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %s", name, err)
	}
	return Entry{Path: path, Size: uint64(len(content))}
}

func groupPaths(g DuplicateGroup) []string {
	out := append([]string(nil), g.Paths...)
	sort.Strings(out)
	return out
}

// S1-equivalent: two identical files and one distinct file of the same
// size must land in exactly one group of two under strict hashing (spec
// §8, testable property 1: "no false negatives under strict").
func TestRunStrictFindsExactDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a", []byte("duplicate content"))
	b := mustWrite(t, dir, "b", []byte("duplicate content"))
	c := mustWrite(t, dir, "c", []byte("dddddddddddddddd!"))

	groups := Run([]Entry{a, b, c}, Strict)
	if len(groups) != 1 {
		t.Fatalf("want 1 group, got %d: %+v", len(groups), groups)
	}
	got := groupPaths(groups[0])
	want := []string{a.Path, b.Path}
	sort.Strings(want)
	if got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("group paths = %v, want %v", got, want)
	}
}

// Files with different sizes are never compared at all (spec §4.5 stage 1:
// bucketing is purely by size).
func TestRunNeverGroupsAcrossSizes(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a", []byte("short"))
	b := mustWrite(t, dir, "b", []byte("a much longer string entirely"))

	groups := Run([]Entry{a, b}, Strict)
	if len(groups) != 0 {
		t.Fatalf("want 0 groups for distinct sizes, got %d", len(groups))
	}
}

// Singleton size buckets and singleton hash buckets are both dropped (spec
// §4.5 stage 1 and stage 2, §8 testable property: "no singleton groups").
func TestRunNoSingletonGroups(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a", []byte("lonely"))

	groups := Run([]Entry{a}, Strict)
	if len(groups) != 0 {
		t.Fatalf("want 0 groups for a single file, got %d", len(groups))
	}
}

// Every reported DuplicateGroup's Size must equal every member's actual
// file size (spec §8, "size coherence").
func TestRunGroupSizeMatchesMembers(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a", []byte("abcdefgh"))
	b := mustWrite(t, dir, "b", []byte("abcdefgh"))

	groups := Run([]Entry{a, b}, Strict)
	if len(groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(groups))
	}
	for _, p := range groups[0].Paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %s", p, err)
		}
		if uint64(info.Size()) != groups[0].Size {
			t.Fatalf("group size %d does not match file size %d for %s", groups[0].Size, info.Size(), p)
		}
	}
}

func TestRunFuzzyGroupsIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, fuzzyChunk*3)
	for i := range content {
		content[i] = byte(i)
	}
	a := mustWrite(t, dir, "a", content)
	b := mustWrite(t, dir, "b", content)

	groups := Run([]Entry{a, b}, Fuzzy)
	if len(groups) != 1 {
		t.Fatalf("want 1 group under fuzzy hashing, got %d", len(groups))
	}
}
