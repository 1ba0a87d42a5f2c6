package ddup

import (
	"encoding/binary"
	"unicode/utf16"
)

// FILE_ATTRIBUTE_DIRECTORY, from winioctl.h — the attribute bit used to
// distinguish file records from directory (name-table) records (spec
// §4.2.3).
const fileAttributeDirectory = 0x00000010

// record is the parsed shape of one MFT/USN entry: spec §3's
// (file_reference, parent_reference, name, flags) tuple, plus the fields
// §4.2.3 says the on-disk record carries.
type record struct {
	FileRef   FileReference
	ParentRef FileReference
	USN       int64
	Timestamp int64
	Reason    uint32
	Attrs     uint32
	Name      string
	IsDir     bool
}

// recordHeaderLenV2 is the fixed portion of a V2 USN-style record: length,
// major/minor version, file ref, parent ref, USN, timestamp, reason,
// source info, security id, attributes, name length, name offset (spec
// §6's "USN record binary layout").
const recordHeaderLenV2 = 4 + 2 + 2 + 8 + 8 + 8 + 8 + 4 + 4 + 4 + 4 + 2 + 2

// parseRecords decodes a buffer returned by FSCTL_ENUM_USN_DATA or
// FSCTL_READ_USN_JOURNAL into a sequence of records, advancing by each
// record's declared length. Records with an unsupported version, an
// out-of-bounds name or a malformed UTF-16 name are skipped with a debug log
// and parsing continues with the next record; a truncated or inconsistent
// record length ends parsing of this buffer, also with a debug log, and the
// records already parsed are returned (spec §4.2.4). This function never
// returns an error for per-record corruption; only the caller's transport
// I/O errors abort the stream.
func parseRecords(buf []byte) []record {
	var out []record
	var offset uint32
	total := uint32(len(buf))

	for offset+recordHeaderLenV2 <= total {
		recLen := binary.LittleEndian.Uint32(buf[offset:])
		if recLen < recordHeaderLenV2 || offset+recLen > total {
			log.Debug().Uint32("offset", offset).Uint32("recLen", recLen).
				Msg("ntfs: truncated or inconsistent record length, stopping buffer")
			break
		}

		major := binary.LittleEndian.Uint16(buf[offset+4:])
		if major != 2 {
			// Version 3 widens references to 128 bits; this module's data
			// model (spec §3, FileReference) is 64-bit only. Skip the
			// record rather than mis-parse it.
			log.Debug().Uint16("major", major).Msg("ntfs: unsupported record version, skipping record")
			offset += recLen
			continue
		}

		r, ok := parseV2(buf[offset : offset+recLen])
		if ok {
			out = append(out, r)
		}
		offset += recLen
	}
	return out
}

func parseV2(rec []byte) (record, bool) {
	fileRef := binary.LittleEndian.Uint64(rec[8:])
	parentRef := binary.LittleEndian.Uint64(rec[16:])
	usn := int64(binary.LittleEndian.Uint64(rec[24:]))
	timestamp := int64(binary.LittleEndian.Uint64(rec[32:]))
	reason := binary.LittleEndian.Uint32(rec[40:])
	// source info (rec[44:48]) and security id (rec[48:52]) are part of the
	// on-disk layout (spec §6) but unused by this module.
	attrs := binary.LittleEndian.Uint32(rec[52:])
	nameLen := binary.LittleEndian.Uint16(rec[56:])
	nameOff := binary.LittleEndian.Uint16(rec[58:])

	if int(nameOff)+int(nameLen) > len(rec) || nameLen%2 != 0 {
		log.Debug().Msg("ntfs: name field out of bounds, skipping record")
		return record{}, false
	}

	name, ok := decodeUTF16LE(rec[nameOff : int(nameOff)+int(nameLen)])
	if !ok {
		log.Debug().Msg("ntfs: malformed UTF-16 name, skipping record")
		return record{}, false
	}

	return record{
		FileRef:   FileReference(fileRef),
		ParentRef: FileReference(parentRef),
		USN:       usn,
		Timestamp: timestamp,
		Reason:    reason,
		Attrs:     attrs,
		Name:      name,
		IsDir:     attrs&fileAttributeDirectory != 0,
	}, true
}

func decodeUTF16LE(b []byte) (string, bool) {
	if len(b)%2 != 0 {
		return "", false
	}
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	for i := 0; i < len(u16); i++ {
		switch c := u16[i]; {
		case c >= 0xD800 && c <= 0xDBFF:
			if i+1 >= len(u16) || u16[i+1] < 0xDC00 || u16[i+1] > 0xDFFF {
				return "", false
			}
			i++
		case c >= 0xDC00 && c <= 0xDFFF:
			return "", false
		}
	}
	return string(utf16.Decode(u16)), true
}
