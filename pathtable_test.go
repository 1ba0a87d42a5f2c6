package ddup

import (
	"sort"
	"testing"
)

func ref(n uint64) FileReference { return FileReference(n) }

func TestNameTableResolvesSimpleTree(t *testing.T) {
	table := NewNameTable()
	table.Absorb([]record{
		{FileRef: ref(100), ParentRef: RootReference, Name: "dir"},
		{FileRef: ref(101), ParentRef: ref(100), Name: "file.txt"},
	})

	paths := table.ResolveAll()
	sort.Strings(paths)
	want := []string{`dir`, `dir\file.txt`}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("got %v, want %v", paths, want)
		}
	}
}

// First-write-wins: absorbing a second record for a reference already seen
// must not overwrite it (spec §4.3).
func TestNameTableFirstWriteWins(t *testing.T) {
	table := NewNameTable()
	table.Absorb([]record{{FileRef: ref(1), ParentRef: RootReference, Name: "first"}})
	table.Absorb([]record{{FileRef: ref(1), ParentRef: RootReference, Name: "second"}})

	paths := table.ResolveAll()
	if len(paths) != 1 || paths[0] != "first" {
		t.Fatalf("got %v, want [first]", paths)
	}
}

// A reference whose parent was never absorbed (a broken chain) is dropped
// rather than surfacing a partial path.
func TestNameTableDropsBrokenChain(t *testing.T) {
	table := NewNameTable()
	table.Absorb([]record{{FileRef: ref(5), ParentRef: ref(999), Name: "orphan"}})

	paths := table.ResolveAll()
	if len(paths) != 0 {
		t.Fatalf("want 0 resolvable paths, got %v", paths)
	}
}

// A cyclic parent graph must not hang resolution (spec §9, maxParentDepth).
func TestNameTableBoundsCyclicParents(t *testing.T) {
	table := NewNameTable()
	table.Absorb([]record{
		{FileRef: ref(1), ParentRef: ref(2), Name: "a"},
		{FileRef: ref(2), ParentRef: ref(1), Name: "b"},
	})

	paths := table.ResolveAll()
	if len(paths) != 0 {
		t.Fatalf("cyclic references should not resolve, got %v", paths)
	}
}
