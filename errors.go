package ddup

import (
	"errors"
	"fmt"
)

// errUnsupportedPlatform is the cause wrapped by every Volume method except
// Close on platforms without a raw NTFS backend (see volume_other.go).
var errUnsupportedPlatform = errors.New("raw NTFS volume access requires windows")

// Kind classifies an Error without requiring callers to match on message
// text. See spec §7 for the taxonomy this mirrors.
type Kind int

const (
	// KindIO is a generic underlying I/O failure.
	KindIO Kind = iota
	// KindVolumeOpen means the raw device handle could not be acquired.
	KindVolumeOpen
	// KindUsnJournalQuery means the USN journal is disabled or inaccessible.
	KindUsnJournalQuery
	// KindGlob means the match pattern was malformed.
	KindGlob
	// KindEverything means the Everything indexer returned an error; always
	// recoverable via USN fallback.
	KindEverything
	// KindLockPoison means shared state was left inconsistent by a
	// panicking worker.
	KindLockPoison
	// KindOther is the typed escape hatch.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindVolumeOpen:
		return "volume_open"
	case KindUsnJournalQuery:
		return "usn_journal_query"
	case KindGlob:
		return "glob"
	case KindEverything:
		return "everything"
	case KindLockPoison:
		return "lock_poison"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Error is the module's single error type. NewDirList, ExportJSON and the
// Volume open/query/enumeration methods return either nil or an *Error, so
// callers can switch on its Kind field instead of matching strings. The
// HashFunc implementations and LinkResult.Err carry the underlying OS error
// unwrapped.
type Error struct {
	Kind  Kind
	Drive string // set for KindVolumeOpen
	Msg   string
	Err   error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindVolumeOpen:
		return fmt.Sprintf("open volume %q: %s", e.Drive, e.causeText())
	case KindUsnJournalQuery:
		return fmt.Sprintf("query USN journal: %s", e.causeText())
	case KindGlob:
		return fmt.Sprintf("compile match pattern: %s", e.causeText())
	case KindEverything:
		return fmt.Sprintf("everything search: %s", e.causeText())
	case KindLockPoison:
		return fmt.Sprintf("lock poisoned: %s", e.causeText())
	case KindIO:
		return fmt.Sprintf("io: %s", e.causeText())
	default:
		return e.causeText()
	}
}

func (e *Error) causeText() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func errVolumeOpen(drive string, cause error) *Error {
	return &Error{Kind: KindVolumeOpen, Drive: drive, Err: cause}
}

func errUsnJournalQuery(cause error) *Error {
	return &Error{Kind: KindUsnJournalQuery, Err: cause}
}

func errGlob(cause error) *Error {
	return &Error{Kind: KindGlob, Err: cause}
}

func errEverything(msg string) *Error {
	return &Error{Kind: KindEverything, Msg: msg}
}

func errLockPoison(msg string) *Error {
	return &Error{Kind: KindLockPoison, Msg: msg}
}

func errOther(msg string) *Error {
	return &Error{Kind: KindOther, Msg: msg}
}

func errIO(cause error) *Error {
	return &Error{Kind: KindIO, Err: cause}
}
