//go:build windows

package ddup

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Device control codes used against the raw volume handle (spec §6).
const (
	fsctlQueryUsnJournal = 0x000900F4
	fsctlEnumUsnData     = 0x000900B3
	fsctlReadUsnJournal  = 0x000900BB
)

const maxRecordBufferSize = 1 << 16 // 64KiB, same working size as backend_usn.go

// mftEnumDataV0 mirrors MFT_ENUM_DATA_V0 (spec §4.2.1).
type mftEnumDataV0 struct {
	StartFileReferenceNumber uint64
	LowUsn                   int64
	HighUsn                  int64
}

// queryUsnJournalDataV0 mirrors QUERY_USN_JOURNAL_DATA (spec §4.1).
type queryUsnJournalDataV0 struct {
	UsnJournalID    uint64
	FirstUsn        int64
	NextUsn         int64
	LowestValidUsn  int64
	MaxUsn          int64
	MaximumSize     uint64
	AllocationDelta uint64
}

// readUsnJournalDataV0 mirrors READ_USN_JOURNAL_DATA (spec §4.2.2).
type readUsnJournalDataV0 struct {
	StartUsn          int64
	ReasonMask        uint32
	ReturnOnlyOnClose uint32
	Timeout           uint64
	BytesToWaitFor    uint64
	UsnJournalID      uint64
}

// Volume is a thin wrapper over a raw NTFS volume handle: open-for-shared-
// read plus a DeviceIoControl dispatcher (spec §4.1). It is the only piece
// of this module that talks to the kernel directly.
type Volume struct {
	handle windows.Handle
	drive  string
}

// OpenVolume opens `\\.\<drive>` for shared read. Requires elevated
// privileges in the common case (spec §6, Environment).
func OpenVolume(drive string) (*Volume, error) {
	path := `\\.\` + drive
	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, errVolumeOpen(drive, err)
	}
	return &Volume{handle: h, drive: drive}, nil
}

// Close releases the underlying device handle.
func (v *Volume) Close() error {
	return windows.CloseHandle(v.handle)
}

// JournalInfo is the subset of QUERY_USN_JOURNAL_DATA the path assembler
// and USN reader need.
type JournalInfo struct {
	JournalID      uint64
	LowestValidUsn int64
	NextUsn        int64
}

// QueryJournal issues FSCTL_QUERY_USN_JOURNAL to obtain the current journal
// bounds (spec §4.1).
func (v *Volume) QueryJournal() (JournalInfo, error) {
	var data queryUsnJournalDataV0
	var bytesReturned uint32
	err := windows.DeviceIoControl(
		v.handle,
		fsctlQueryUsnJournal,
		nil, 0,
		(*byte)(unsafe.Pointer(&data)), uint32(unsafe.Sizeof(data)),
		&bytesReturned, nil,
	)
	if err != nil {
		return JournalInfo{}, errUsnJournalQuery(err)
	}
	return JournalInfo{
		JournalID:      data.UsnJournalID,
		LowestValidUsn: data.LowestValidUsn,
		NextUsn:        data.NextUsn,
	}, nil
}

// EnumerateMFT sweeps the whole MFT via FSCTL_ENUM_USN_DATA, resubmitting
// with the kernel-returned cursor until ERROR_HANDLE_EOF (spec §4.2.1).
// onBatch is called once per buffer with the records parsed from it.
func (v *Volume) EnumerateMFT(onBatch func([]record)) error {
	input := mftEnumDataV0{
		StartFileReferenceNumber: 0,
		LowUsn:                   0,
		HighUsn:                  1<<63 - 1,
	}
	buf := make([]byte, maxRecordBufferSize)

	for {
		var bytesReturned uint32
		err := windows.DeviceIoControl(
			v.handle,
			fsctlEnumUsnData,
			(*byte)(unsafe.Pointer(&input)), uint32(unsafe.Sizeof(input)),
			&buf[0], uint32(len(buf)),
			&bytesReturned, nil,
		)
		if err != nil {
			if errors.Is(err, windows.ERROR_HANDLE_EOF) {
				return nil
			}
			return errIO(fmt.Errorf("FSCTL_ENUM_USN_DATA: %w", err))
		}
		if bytesReturned <= 8 {
			return nil
		}

		nextRef := bytesToUint64(buf[:8])
		onBatch(parseRecords(buf[8:bytesReturned]))
		input.StartFileReferenceNumber = nextRef
	}
}

// ReadUSNJournal streams the journal from `low` to the kernel's current
// position via FSCTL_READ_USN_JOURNAL. The request uses the V0 input
// structure, which carries no version range, so the kernel returns version-2
// records; parseRecords skips records of any other version, so version-3
// records are not read (spec §4.2.2). Terminates when the returned buffer
// carries only the cursor (no new records).
func (v *Volume) ReadUSNJournal(journalID uint64, low int64, onBatch func([]record)) error {
	input := readUsnJournalDataV0{
		StartUsn:          low,
		ReasonMask:        0xFFFFFFFF,
		ReturnOnlyOnClose: 0,
		Timeout:           0,
		BytesToWaitFor:    0,
		UsnJournalID:      journalID,
	}
	buf := make([]byte, maxRecordBufferSize)

	for {
		var bytesReturned uint32
		err := windows.DeviceIoControl(
			v.handle,
			fsctlReadUsnJournal,
			(*byte)(unsafe.Pointer(&input)), uint32(unsafe.Sizeof(input)),
			&buf[0], uint32(len(buf)),
			&bytesReturned, nil,
		)
		if err != nil {
			if errors.Is(err, windows.ERROR_HANDLE_EOF) {
				return nil
			}
			return errIO(fmt.Errorf("FSCTL_READ_USN_JOURNAL: %w", err))
		}
		if bytesReturned <= 8 {
			return nil
		}

		nextUsn := int64(bytesToUint64(buf[:8]))
		onBatch(parseRecords(buf[8:bytesReturned]))
		if nextUsn == input.StartUsn {
			return nil
		}
		input.StartUsn = nextUsn
	}
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
