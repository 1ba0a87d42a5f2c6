package ddup

import "os"

// LinkResult reports what happened when replacing one duplicate path with
// a hardlink to the group's canonical file.
type LinkResult struct {
	Path      string
	Canonical string
	Replaced  bool
	Err       error
}

// LinkGroups replaces every non-canonical path in each group with a
// hardlink to the group's first path, freeing disk space (spec §4.6). The
// action is strict-mode-only; callers under fuzzy mode must force Strict
// re-hashing before calling this (cmd/ddup enforces that and logs a
// warning, spec §4.6's last paragraph).
func LinkGroups(groups []DuplicateGroup) []LinkResult {
	var results []LinkResult
	for _, g := range groups {
		if len(g.Paths) < 2 {
			continue
		}
		canonical := g.Paths[0]
		for _, p := range g.Paths[1:] {
			results = append(results, linkOne(p, canonical))
		}
	}
	return results
}

// linkOne performs the crash-safe five-step sequence from spec §4.6:
// rename the victim aside, hardlink the canonical file into its place,
// and only then delete the temporary. A failure at step 2 restores the
// original file; a failure restoring it is logged CRITICAL and the
// temporary is left for the operator.
func linkOne(path, canonical string) LinkResult {
	tmp := path + ".tmp_suffix"

	if err := os.Rename(path, tmp); err != nil {
		log.Error().Err(err).Str("path", path).Msg("link: rename aside failed")
		return LinkResult{Path: path, Canonical: canonical, Err: err}
	}

	if err := os.Link(canonical, path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("link: hardlink create failed, restoring")
		if restoreErr := os.Rename(tmp, path); restoreErr != nil {
			log.Error().Err(restoreErr).Str("path", path).
				Msg("CRITICAL: link: restore of original file failed, temp file left in place")
			return LinkResult{Path: path, Canonical: canonical, Err: restoreErr}
		}
		return LinkResult{Path: path, Canonical: canonical, Err: err}
	}

	if err := os.Remove(tmp); err != nil {
		log.Error().Err(err).Str("path", path).Msg("link: could not remove temp file after linking")
		return LinkResult{Path: path, Canonical: canonical, Replaced: true, Err: err}
	}

	return LinkResult{Path: path, Canonical: canonical, Replaced: true}
}
