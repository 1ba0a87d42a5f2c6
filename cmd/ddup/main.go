// Command ddup finds duplicate files on an NTFS volume by MFT/USN
// enumeration and content hashing, and can optionally replace confirmed
// duplicates with hardlinks.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ntfsdup/ddup"
)

var (
	matchPattern  string
	caseInsens    bool
	strict        bool
	useEverything bool
	wizTreeFile   string
	exportFile    string
	link          bool
	verbose       bool
)

func main() {
	root := &cobra.Command{
		Use:   "ddup <drive>",
		Short: "Find and optionally hardlink duplicate files on an NTFS volume",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}

	root.Flags().StringVarP(&matchPattern, "match", "m", "", "glob pattern to restrict candidates (default: match-all)")
	root.Flags().BoolVarP(&caseInsens, "insensitive", "i", false, "matcher is case-insensitive")
	root.Flags().BoolVarP(&strict, "strict", "s", false, "use strict (full-content) hashing instead of fuzzy sampling")
	root.Flags().BoolVarP(&useEverything, "everything", "E", false, "prefer the Everything indexing service, falling back to USN")
	root.Flags().StringVarP(&wizTreeFile, "wiztree", "w", "", "use a WizTree CSV export as the enumeration source")
	root.Flags().StringVarP(&exportFile, "export", "e", "", "also write duplicate groups as JSON to FILE")
	root.Flags().BoolVarP(&link, "link", "l", false, "replace duplicates with hardlinks (forces --strict)")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "elevate log level to debug")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ddup.SetVerbose(verbose)

	if wizTreeFile == "" && len(args) != 1 {
		return fmt.Errorf("a drive argument (e.g. C:) is required unless --wiztree is given")
	}

	if link && !strict {
		fmt.Fprintln(os.Stderr, "warning: --link forces --strict (fuzzy hashes are not collision-proof)")
		strict = true
	}

	opts := ddup.MatchOptions{
		CaseSensitive:            !caseInsens,
		RequireLiteralLeadingDot: true,
		RequireLiteralSeparator:  false,
	}

	backend := ddup.BackendUSN
	source := ""
	switch {
	case wizTreeFile != "":
		backend = ddup.BackendWizTree
		source = wizTreeFile
	case useEverything:
		backend = ddup.BackendEverything
		source = args[0]
	default:
		source = args[0]
	}

	list, err := ddup.NewDirList(source, matchPattern, opts, backend)
	if err != nil {
		return err
	}

	entries := list.Entries()
	bar := progressbar.Default(int64(len(entries)), "hashing candidates")
	defer bar.Close()

	cmp := ddup.Fuzzy
	if strict {
		cmp = ddup.Strict
	}
	groups := ddup.Run(entries, cmp)
	bar.Set(len(entries))

	var freed uint64
	for _, g := range groups {
		fmt.Printf("size=%s count=%d\n", humanize.Bytes(g.Size), len(g.Paths))
		for _, p := range g.Paths {
			fmt.Printf("  %s\n", p)
		}
		freed += g.Size * uint64(len(g.Paths)-1)
	}
	fmt.Printf("%d duplicate groups, %s reclaimable\n", len(groups), humanize.Bytes(freed))

	if exportFile != "" {
		if err := ddup.ExportJSON(groups, exportFile); err != nil {
			return err
		}
	}

	if link {
		results := ddup.LinkGroups(groups)
		var replaced uint64
		for _, r := range results {
			if r.Replaced {
				replaced++
			}
		}
		fmt.Printf("linked %d/%d files\n", replaced, len(results))
	}

	return nil
}
