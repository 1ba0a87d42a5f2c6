package ddup

// everythingClient is the Go-level boundary around the Everything indexing
// service (spec §4.4). It is satisfied on Windows by a lazy-loaded DLL
// binding (everything_windows.go) and left unimplemented everywhere else
// (everything_stub.go).
type everythingClient interface {
	search(query string, caseSensitive bool) ([]Entry, error)
	close()
}

// newDirListFromEverything tries the Everything service first and falls
// back to BackendUSN whenever the service is unreachable or the query comes
// back empty (spec §4.4: "Everything... falling back to BackendUSN when
// it's unreachable or empty").
func newDirListFromEverything(drive, pattern string, opts MatchOptions) (*DirList, error) {
	client, ok := connectEverythingClient()
	if !ok {
		return newDirListFromUSN(drive, pattern, opts)
	}
	defer client.close()

	query := drive
	if pattern != "" {
		query = drive + " " + pattern
	}

	results, err := client.search(query, opts.CaseSensitive)
	if err != nil {
		log.Warn().Err(err).Msg("everything: search failed, falling back to USN")
		return newDirListFromUSN(drive, pattern, opts)
	}
	if len(results) == 0 {
		log.Warn().Msg("everything: search returned no results, falling back to USN")
		return newDirListFromUSN(drive, pattern, opts)
	}

	matcher, err := newPathMatcher(pattern, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(results))
	for _, e := range results {
		if matcher.Match(e.Path) {
			entries = append(entries, e)
		}
	}
	return &DirList{entries: entries}, nil
}
