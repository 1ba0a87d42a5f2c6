package ddup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writeFile %s: %s", name, err)
	}
	return path
}

func TestFuzzyHashEmptyFileIsZero(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty", nil)

	digest, err := FuzzyHash(path, 0)
	if err != nil {
		t.Fatalf("FuzzyHash: %s", err)
	}
	if digest.(uint64) != 0 {
		t.Fatalf("want 0, got %v", digest)
	}
}

func TestFuzzyHashIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 20000)
	for i := range content {
		content[i] = byte(i % 251)
	}
	a := writeFile(t, dir, "a", content)
	b := writeFile(t, dir, "b", content)

	da, err := FuzzyHash(a, uint64(len(content)))
	if err != nil {
		t.Fatalf("FuzzyHash a: %s", err)
	}
	db, err := FuzzyHash(b, uint64(len(content)))
	if err != nil {
		t.Fatalf("FuzzyHash b: %s", err)
	}
	if da != db {
		t.Fatalf("identical files hashed differently: %v != %v", da, db)
	}
}

func TestFuzzyHashSamplesBoundedBytes(t *testing.T) {
	dir := t.TempDir()
	size := 10 * fuzzyChunk
	content := make([]byte, size)
	a := writeFile(t, dir, "a", content)

	// Changing a byte outside any sampled window must not change the digest.
	// For size 40960 the windows are [0,4096), [8192,12288), [24576,28672)
	// and the tail [36864,40960); offset size/2 = 20480 lies in none.
	content2 := make([]byte, size)
	copy(content2, content)
	content2[size/2] ^= 0xFF
	b := writeFile(t, dir, "b", content2)

	da, err := FuzzyHash(a, uint64(size))
	if err != nil {
		t.Fatalf("FuzzyHash a: %s", err)
	}
	db, err := FuzzyHash(b, uint64(size))
	if err != nil {
		t.Fatalf("FuzzyHash b: %s", err)
	}
	if da != db {
		t.Fatalf("a byte outside every sampled window changed the digest: %v != %v", da, db)
	}
}

func TestStrictHashDetectsAnyDifference(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("hello world"))
	b := writeFile(t, dir, "b", []byte("hello worlD"))

	da, err := StrictHash(a, 11)
	if err != nil {
		t.Fatalf("StrictHash a: %s", err)
	}
	db, err := StrictHash(b, 11)
	if err != nil {
		t.Fatalf("StrictHash b: %s", err)
	}
	if da.([32]byte) == db.([32]byte) {
		t.Fatalf("differing content produced the same strict hash")
	}
}

func TestStrictHashIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	content := []byte("the quick brown fox jumps over the lazy dog")
	a := writeFile(t, dir, "a", content)
	b := writeFile(t, dir, "b", content)

	da, err := StrictHash(a, uint64(len(content)))
	if err != nil {
		t.Fatalf("StrictHash a: %s", err)
	}
	db, err := StrictHash(b, uint64(len(content)))
	if err != nil {
		t.Fatalf("StrictHash b: %s", err)
	}
	if da.([32]byte) != db.([32]byte) {
		t.Fatalf("identical files hashed differently")
	}
}
