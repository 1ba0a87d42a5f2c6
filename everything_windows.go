//go:build windows

package ddup

import (
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Everything3_x64.dll is never distributed with this module (spec §9: no
// fabricated dependencies). It's loaded lazily, exactly like any optional
// third-party DLL a Windows-targeting Go binary probes for at runtime: if
// it isn't on PATH, connect() reports false and the caller falls back to
// BackendUSN (spec §4.4).
var (
	everythingDLL = windows.NewLazyDLL("Everything3_x64.dll")

	procConnectUTF8           = everythingDLL.NewProc("Everything3_ConnectUTF8")
	procDestroyClient         = everythingDLL.NewProc("Everything3_DestroyClient")
	procCreateSearchState     = everythingDLL.NewProc("Everything3_CreateSearchState")
	procDestroySearchState    = everythingDLL.NewProc("Everything3_DestroySearchState")
	procAddSearchProperty     = everythingDLL.NewProc("Everything3_AddSearchPropertyRequest")
	procSetSearchMatchPath    = everythingDLL.NewProc("Everything3_SetSearchMatchPath")
	procSetSearchMatchCase    = everythingDLL.NewProc("Everything3_SetSearchMatchCase")
	procSetSearchTextUTF8     = everythingDLL.NewProc("Everything3_SetSearchTextUTF8")
	procSearch                = everythingDLL.NewProc("Everything3_Search")
	procGetResultListCount    = everythingDLL.NewProc("Everything3_GetResultListCount")
	procGetResultAttributes   = everythingDLL.NewProc("Everything3_GetResultAttributes")
	procGetResultSize         = everythingDLL.NewProc("Everything3_GetResultSize")
	procGetResultFullPath     = everythingDLL.NewProc("Everything3_GetResultFullPathNameUTF8")
	procGetResultPropDWORD    = everythingDLL.NewProc("Everything3_GetResultPropertyDWORD")
	procGetResultPropTextUTF8 = everythingDLL.NewProc("Everything3_GetResultPropertyTextUTF8")
	procDestroyResultList     = everythingDLL.NewProc("Everything3_DestroyResultList")
)

// Everything property IDs, taken from the SDK headers this binding targets.
const (
	propIDName              = 0
	propIDPath              = 3
	propIDSize              = 12
	propIDAttributes        = 13
	propIDPathAndName       = 62
	propIDHardLinkCount     = 67
	propIDHardLinkFileNames = 68
	fileAttrDirectoryMask   = 0x00000010
)

type windowsEverythingClient struct {
	handle uintptr
	mu     sync.Mutex
}

func connectEverythingClient() (everythingClient, bool) {
	if err := everythingDLL.Load(); err != nil {
		log.Warn().Err(err).Msg("everything: DLL not found, falling back to USN")
		return nil, false
	}

	client, instance := tryConnect("")
	if client == 0 {
		client, instance = tryConnect("1.5a")
	}
	if client == 0 {
		log.Warn().Msg("everything: ConnectUTF8 returned NULL for default and 1.5a instances")
		return nil, false
	}
	log.Debug().Str("instance", instance).Msg("everything: connected")
	return &windowsEverythingClient{handle: client}, true
}

func tryConnect(instance string) (uintptr, string) {
	var namePtr uintptr
	if instance != "" {
		b, err := windows.BytePtrFromString(instance)
		if err != nil {
			return 0, instance
		}
		namePtr = uintptr(unsafe.Pointer(b))
	}
	r, _, _ := procConnectUTF8.Call(namePtr)
	if instance == "" {
		return r, "default"
	}
	return r, instance
}

func (c *windowsEverythingClient) close() {
	if c.handle == 0 {
		return
	}
	procDestroyClient.Call(c.handle)
	c.handle = 0
}

// search runs one query and applies the same hardlink-sibling collapse the
// original implementation performs inline (spec §4.2 supplemented feature,
// grounded on original_source/src/everything.rs's get_all_files): directory
// results are skipped, and when a result reports more than one hardlink,
// only the lexicographically-first sibling name survives.
func (c *windowsEverythingClient) search(query string, caseSensitive bool) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, _, _ := procCreateSearchState.Call()
	if state == 0 {
		return nil, errEverything("CreateSearchState returned NULL")
	}
	defer procDestroySearchState.Call(state)

	for _, prop := range []uintptr{propIDName, propIDPath, propIDSize, propIDAttributes, propIDPathAndName, propIDHardLinkCount, propIDHardLinkFileNames} {
		procAddSearchProperty.Call(state, prop)
	}
	procSetSearchMatchPath.Call(state, 1)
	matchCase := uintptr(0)
	if caseSensitive {
		matchCase = 1
	}
	procSetSearchMatchCase.Call(state, matchCase)

	q, err := windows.BytePtrFromString(query)
	if err != nil {
		return nil, errEverything(err.Error())
	}
	procSetSearchTextUTF8.Call(state, uintptr(unsafe.Pointer(q)))

	results, _, _ := procSearch.Call(c.handle, state)
	if results == 0 {
		return nil, errEverything("search call returned NULL")
	}
	defer procDestroyResultList.Call(results)

	count, _, _ := procGetResultListCount.Call(results)

	var entries []Entry
	var buf [4096]byte
	for i := uintptr(0); i < count; i++ {
		attrs, _, _ := procGetResultAttributes.Call(results, i)
		if attrs&fileAttrDirectoryMask != 0 {
			continue
		}

		hlCount, _, _ := procGetResultPropDWORD.Call(results, i, propIDHardLinkCount)
		if hlCount > 1 && !isHardlinkLeader(results, i, &buf) {
			continue
		}

		n, _, _ := procGetResultFullPath.Call(results, i, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n == 0 {
			n, _, _ = procGetResultPropTextUTF8.Call(results, i, propIDPathAndName, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
			if n == 0 {
				continue
			}
		}
		size, _, _ := procGetResultSize.Call(results, i)
		entries = append(entries, Entry{Path: string(buf[:n]), Size: uint64(size)})
	}

	return entries, nil
}

// isHardlinkLeader reports whether result i is the lexicographically-first
// sibling among its hardlink names, so duplicate inode aliases only surface
// once (spec §4.2).
func isHardlinkLeader(results uintptr, i uintptr, buf *[4096]byte) bool {
	n, _, _ := procGetResultPropTextUTF8.Call(results, i, propIDHardLinkFileNames, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return true
	}
	names := strings.Split(string(buf[:n]), ";")

	var path [4096]byte
	pn, _, _ := procGetResultFullPath.Call(results, i, uintptr(unsafe.Pointer(&path[0])), uintptr(len(path)))
	current := string(path[:pn])
	if len(current) >= 2 && current[1] == ':' {
		current = current[2:]
	}

	lowest := names[0]
	for _, n := range names[1:] {
		if n < lowest {
			lowest = n
		}
	}
	return lowest == current
}
