// Command streamstat reports summary statistics about a fast-import
// command stream: counts of blobs, commits, and file operations by kind,
// and total blob bytes, without driving `git fast-import` itself. Useful
// for sanity-checking a stream before feeding it to git on a large import.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cvsgitimport/cvsgitimport/fastimport"
)

var (
	inputFile = kingpin.Arg(
		"stream",
		"Fast-import stream file to analyze (defaults to stdin).",
	).String()
	debug = kingpin.Flag(
		"debug",
		"Enable debug logging.",
	).Bool()
)

// Humanize renders a byte count in the same kMGT suffix style `git` itself
// uses for object sizes.
func Humanize(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}

type stats struct {
	blobs      int
	blobBytes  int64
	commits    int
	modifies   int
	deletes    int
	copies     int
	renames    int
	deletealls int
	resets     int
	tags       int
	checkpoint int
}

func main() {
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version("streamstat 0.1.0").Author("cvsgitimport")
	kingpin.CommandLine.Help = "Reports summary statistics about a git fast-import command stream.\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatalf("failed to open %s: %v", *inputFile, err)
		}
		defer f.Close()
		in = f
	}

	s := &stats{}
	r := fastimport.NewReader(in)
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Fatalf("parse error: %v", err)
		}
		tally(s, ev)
	}

	fmt.Printf("blobs:      %d (%s)\n", s.blobs, Humanize(s.blobBytes))
	fmt.Printf("commits:    %d\n", s.commits)
	fmt.Printf("  modify:   %d\n", s.modifies)
	fmt.Printf("  delete:   %d\n", s.deletes)
	fmt.Printf("  copy:     %d\n", s.copies)
	fmt.Printf("  rename:   %d\n", s.renames)
	fmt.Printf("  deleteall:%d\n", s.deletealls)
	fmt.Printf("resets:     %d\n", s.resets)
	fmt.Printf("tags:       %d\n", s.tags)
	fmt.Printf("checkpoints:%d\n", s.checkpoint)
}

func tally(s *stats, ev *fastimport.Event) {
	switch {
	case ev.Blob != nil:
		s.blobs++
		s.blobBytes += int64(len(ev.Blob.Data))
	case ev.Commit != nil:
		s.commits++
		for _, op := range ev.Commit.Ops {
			switch op.(type) {
			case fastimport.Modify:
				s.modifies++
			case fastimport.Delete:
				s.deletes++
			case fastimport.Copy:
				s.copies++
			case fastimport.Rename:
				s.renames++
			case fastimport.DeleteAll:
				s.deletealls++
			}
		}
	case ev.Reset != nil:
		s.resets++
	case ev.Tag != nil:
		s.tags++
	case ev.Checkpoint:
		s.checkpoint++
	}
}
