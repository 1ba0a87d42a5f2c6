//go:build !windows

package ddup

// connectEverythingClient never succeeds off Windows; the Everything
// indexing service is a Windows-only process (see everything_windows.go).
func connectEverythingClient() (everythingClient, bool) {
	return nil, false
}
