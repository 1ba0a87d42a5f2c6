//go:build !windows

package ddup

// Volume is the non-Windows stand-in: raw NTFS/USN access requires a
// Windows volume handle (spec §4.1), so OpenVolume always fails with a
// VolumeOpen-kind error, QueryJournal fails with a UsnJournalQuery-kind
// error, the enumeration methods fail with an Io-kind error, and Close is a
// no-op. This keeps the platform-independent packages
// (pathtable, hash, pipeline, dirlist's CSV/Everything-less paths) buildable
// and testable off Windows, matching fsnotify's own backend_other.go
// pattern for platforms it has no native backend for.
type Volume struct {
	drive string
}

// JournalInfo mirrors the Windows-only type so shared code compiles.
type JournalInfo struct {
	JournalID      uint64
	LowestValidUsn int64
	NextUsn        int64
}

// OpenVolume always fails off Windows.
func OpenVolume(drive string) (*Volume, error) {
	return nil, errVolumeOpen(drive, errUnsupportedPlatform)
}

func (v *Volume) Close() error { return nil }

func (v *Volume) QueryJournal() (JournalInfo, error) {
	return JournalInfo{}, errUsnJournalQuery(errUnsupportedPlatform)
}

func (v *Volume) EnumerateMFT(onBatch func([]record)) error {
	return errIO(errUnsupportedPlatform)
}

func (v *Volume) ReadUSNJournal(journalID uint64, low int64, onBatch func([]record)) error {
	return errIO(errUnsupportedPlatform)
}
