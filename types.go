package ddup

// FileReference is NTFS's 64-bit file identity: a 48-bit MFT record number
// packed with a 16-bit sequence number that bumps whenever the record slot
// is reused (spec §3).
type FileReference uint64

// RootReference is the sentinel parent reference for the volume root;
// resolution stops here (spec §4.3).
const RootReference FileReference = 0x0005000000000005

// RecordNumber returns the low 48 bits: the MFT slot this reference names.
func (r FileReference) RecordNumber() uint64 { return uint64(r) & 0x0000FFFFFFFFFFFF }

// Sequence returns the high 16 bits: the reuse generation of that slot.
func (r FileReference) Sequence() uint16 { return uint16(uint64(r) >> 48) }

// nameEntry is one NameTable record: a child's raw name and the reference
// of its parent directory (spec §3, NameTable).
type nameEntry struct {
	name   string
	parent FileReference
}

// Entry is a resolved, absolute path paired with its byte size (spec §3).
// Entries are immutable once produced by DirList.
type Entry struct {
	Path string
	Size uint64
}

// DuplicateGroup is terminal pipeline output: a byte size and the paths of
// every file in that size class whose content hash coincided (spec §3).
// len(Paths) is always >= 2.
type DuplicateGroup struct {
	Size  uint64   `json:"size"`
	Paths []string `json:"paths"`
}
