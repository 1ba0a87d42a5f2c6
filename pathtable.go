package ddup

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxParentDepth bounds parent-chain recursion so a corrupted/cyclic
// journal can't hang path resolution (spec §9).
const maxParentDepth = 1024

// NameTable maps a FileReference to its raw name and parent reference
// (spec §3). It is built sequentially by repeated calls to Absorb, then
// becomes read-only and is shared across parallel path-assembly workers
// (spec §4.3, §5).
type NameTable struct {
	entries     map[FileReference]nameEntry
	prefixCache sync.Map // FileReference -> string, populated during resolve
}

// NewNameTable returns an empty table ready for Absorb.
func NewNameTable() *NameTable {
	return &NameTable{entries: make(map[FileReference]nameEntry)}
}

// Absorb inserts every record not already present, first-write-wins (spec
// §4.3: "If the same reference is seen twice... the first observation
// wins"). Must be called sequentially; NameTable is not safe for
// concurrent writes.
func (t *NameTable) Absorb(recs []record) {
	for _, r := range recs {
		if _, exists := t.entries[r.FileRef]; exists {
			continue
		}
		t.entries[r.FileRef] = nameEntry{name: r.Name, parent: r.ParentRef}
	}
}

// Len returns the number of absorbed entries.
func (t *NameTable) Len() int { return len(t.entries) }

// References returns every FileReference absorbed so far, in unspecified
// order (spec §5: "Path resolution order is unspecified").
func (t *NameTable) References() []FileReference {
	refs := make([]FileReference, 0, len(t.entries))
	for ref := range t.entries {
		refs = append(refs, ref)
	}
	return refs
}

// resolve assembles the full path for ref by walking the parent chain to
// the volume root (spec §4.3). Ancestor prefixes are memoized in
// prefixCache as the recursion unwinds, so repeated ancestry across
// siblings is computed once. depth bounds recursion against cyclic parent
// graphs (spec §9).
func (t *NameTable) resolve(ref FileReference, depth int) (string, bool) {
	if depth > maxParentDepth {
		log.Debug().Msg("pathtable: parent chain exceeded max depth, aborting path")
		return "", false
	}
	if ref == RootReference {
		return "", true
	}
	if v, ok := t.prefixCache.Load(ref); ok {
		return v.(string), true
	}

	entry, ok := t.entries[ref]
	if !ok {
		log.Debug().Msg("pathtable: missing parent reference, aborting path")
		return "", false
	}

	parentPath, ok := t.resolve(entry.parent, depth+1)
	if !ok {
		return "", false
	}

	full := entry.name
	if parentPath != "" {
		full = parentPath + `\` + entry.name
	}
	t.prefixCache.Store(ref, full)
	return full, true
}

// ResolveAll resolves every absorbed reference to a full path in parallel,
// bounded to one worker per hardware thread (spec §5, "Scheduling model").
// References whose chain is broken or too deep are silently dropped (each
// logs at debug level when it happens, per spec §4.2.4/§4.3).
func (t *NameTable) ResolveAll() []string {
	refs := t.References()
	paths := make([]string, len(refs))
	ok := make([]bool, len(refs))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			p, resolved := t.resolve(ref, 0)
			paths[i] = p
			ok[i] = resolved
			return nil
		})
	}
	_ = g.Wait() // workers never return an error; ok[] records per-leaf success

	out := make([]string, 0, len(refs))
	for i, resolved := range ok {
		if resolved {
			out = append(out, paths[i])
		}
	}
	return out
}
