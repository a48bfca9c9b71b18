// Command cvsgitimport walks a CVS repository's ,v files, reconstructs
// the CVS-style commits CVS itself never recorded atomically, and streams
// the result into a git repository as a `git fast-import` command stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alitto/pond"
	"github.com/h2non/filetype"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cvsgitimport/cvsgitimport/audit"
	"github.com/cvsgitimport/cvsgitimport/config"
	"github.com/cvsgitimport/cvsgitimport/fastimport"
	"github.com/cvsgitimport/cvsgitimport/node"
	"github.com/cvsgitimport/cvsgitimport/patchset"
	"github.com/cvsgitimport/cvsgitimport/rcs"
	"github.com/cvsgitimport/cvsgitimport/store"
)

// Humanize renders a byte count the same way git itself does in its own
// progress output.
func Humanize(b int) string {
	const unit = 1000
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := unit, 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "kMGTPE"[exp])
}

var (
	cvsRoot = kingpin.Arg(
		"cvsroot",
		"Root directory of the CVS repository (containing ,v files) to import.",
	).Required().String()
	gitDir = kingpin.Arg(
		"gitdir",
		"Git repository (bare or with a worktree) to import into. Must already exist.",
	).Required().String()
	configPath = kingpin.Flag(
		"config",
		"YAML configuration file.",
	).Short('c').String()
	statePath = kingpin.Flag(
		"state",
		"Path to the state database. Defaults to <gitdir>/cvsgitimport.db.",
	).String()
	auditPath = kingpin.Flag(
		"audit",
		"Path to the audit log. Defaults to <gitdir>/cvsgitimport.audit.log.",
	).String()
	workers = kingpin.Flag(
		"workers",
		"Number of ,v files to parse concurrently.",
	).Default(fmt.Sprintf("%d", runtime.NumCPU())).Int()
	checkpointEvery = kingpin.Flag(
		"checkpoint-every",
		"Emit a fast-import checkpoint and persist progress every N commits.",
	).Default("500").Int()
	profileMode = kingpin.Flag(
		"profile",
		"Enable profiling: cpu or mem.",
	).String()
	debug = kingpin.Flag(
		"debug",
		"Enable debug logging.",
	).Bool()
)

func main() {
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version("cvsgitimport 0.1.0").Author("cvsgitimport")
	kingpin.CommandLine.Help = "Mirrors a CVS repository into git by replaying its RCS history through git fast-import.\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		logger.Fatalf("unknown --profile value %q, want cpu or mem", *profileMode)
	}

	cfg := &config.Config{DefaultBranch: config.DefaultBranch, Window: config.DefaultWindow}
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			logger.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	sp := *statePath
	if sp == "" {
		sp = filepath.Join(*gitDir, "cvsgitimport.db")
	}
	ap := *auditPath
	if ap == "" {
		ap = filepath.Join(*gitDir, "cvsgitimport.audit.log")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		cancel(fmt.Errorf("received signal %v", sig))
	}()
	defer cancel(nil)

	if err := run(ctx, logger, cfg, *cvsRoot, *gitDir, sp, ap); err != nil {
		logger.Fatalf("import failed: %v", err)
	}
}

// run performs one import pass: parse every ,v file, reconstruct
// patchsets, and stream whatever isn't already durable into git.
func run(ctx context.Context, logger *logrus.Logger, cfg *config.Config, cvsRoot, gitDir, statePath, auditPath string) error {
	startTime := time.Now()
	logger.Infof("starting import of %s into %s", cvsRoot, gitDir)

	st, err := store.Open(statePath)
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer st.Close()

	auditFile, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer auditFile.Close()
	auditLog := audit.NewLog(auditFile)
	if info, err := auditFile.Stat(); err == nil && info.Size() == 0 {
		if err := auditLog.WriteHeader(); err != nil {
			return fmt.Errorf("writing audit header: %w", err)
		}
	}

	revisions, tags, err := parseAll(ctx, logger, cfg, cvsRoot)
	if err != nil {
		return err
	}
	logger.Infof("parsed %d file revisions, %d tag entries", len(revisions), len(tags))

	recon := patchset.NewReconstructor(cfg.Window)
	for _, fr := range revisions {
		recon.Add(fr)
	}
	patchsets := recon.Finish()
	logger.Infof("reconstructed %d patchsets", len(patchsets))

	existing, err := st.Patchsets(ctx)
	if err != nil {
		return fmt.Errorf("loading resume state: %w", err)
	}

	marks, err := st.LoadMarkAllocator(ctx)
	if err != nil {
		return fmt.Errorf("loading mark allocator: %w", err)
	}

	// Hand the previous run's exported marks back to a fresh subprocess
	// via --import-marks, so any `from`/M-line mark reference this run
	// makes to a commit or blob emitted by an earlier, now-dead
	// `git fast-import` process still resolves.
	marksPath := statePath + ".marks"
	if prevRaw, err := st.MarksRaw(ctx); err != nil {
		return fmt.Errorf("loading marks file: %w", err)
	} else if len(prevRaw) > 0 {
		if err := os.WriteFile(marksPath, prevRaw, 0644); err != nil {
			return fmt.Errorf("writing marks file: %w", err)
		}
	}

	streamer, err := fastimport.NewStreamer(ctx, gitDir, marksPath, logger)
	if err != nil {
		return fmt.Errorf("starting git fast-import: %w", err)
	}
	writer := streamer.Writer()

	imp := &importer{
		ctx:           ctx,
		logger:        logger,
		store:         st,
		writer:        writer,
		marks:         marks,
		audit:         auditLog,
		defaultBranch: cfg.DefaultBranch,
		branches:      make(map[string]*node.Node),
		commitMarkOf:  make(map[string]map[string]uint64),
		blobMarkOf:    make(map[string]map[string]uint64),
	}

	committed := 0
	for i, p := range patchsets {
		if ctx.Err() != nil {
			break
		}
		var recID int64
		alreadyCommitted := false
		if i < len(existing) {
			recID = existing[i].ID
			alreadyCommitted = existing[i].Committed
		} else {
			memberIDs := make([]int64, len(p.Members))
			for j, m := range p.Members {
				id, err := st.UpsertFileRevision(ctx, m)
				if err != nil {
					return fmt.Errorf("patchset %d: %w", p.ID, err)
				}
				memberIDs[j] = id
			}
			recID, err = st.InsertPatchset(ctx, p.Branch, p.Time, memberIDs)
			if err != nil {
				return fmt.Errorf("patchset %d: %w", p.ID, err)
			}
		}

		if alreadyCommitted {
			if err := imp.replay(p, existing[i].Mark); err != nil {
				return fmt.Errorf("patchset %d: %w", p.ID, err)
			}
			continue
		}
		mark, err := imp.commit(recID, p)
		if err != nil {
			return fmt.Errorf("patchset %d: %w", p.ID, err)
		}
		committed++
		if *checkpointEvery > 0 && committed%*checkpointEvery == 0 {
			if err := writer.Progress(fmt.Sprintf("committed %d/%d patchsets", committed, len(patchsets))); err != nil {
				return fmt.Errorf("progress: %w", err)
			}
			raw, err := streamer.CheckpointAndWait(ctx)
			if err != nil {
				return fmt.Errorf("checkpoint: %w", err)
			}
			if err := st.SaveMarksRaw(ctx, raw); err != nil {
				return fmt.Errorf("saving marks: %w", err)
			}
			logger.Infof("committed %d/%d patchsets, mark :%d", committed, len(patchsets), mark)
		}
	}

	if err := imp.materializeTags(tags); err != nil {
		return fmt.Errorf("materializing tags: %w", err)
	}

	raw, err := streamer.Close()
	if err != nil {
		return fmt.Errorf("closing fast-import stream: %w", err)
	}
	if err := st.SaveMarksRaw(ctx, raw); err != nil {
		return fmt.Errorf("saving marks: %w", err)
	}

	if err := context.Cause(ctx); err != nil && err != context.Canceled {
		logger.Warnf("import interrupted: %v", err)
	}
	logger.Infof("committed %d/%d patchsets in %s", committed, len(patchsets), time.Since(startTime).Round(time.Second))
	return nil
}

// tagRef is one (tag name, path, revision) tuple found in a ,v file's
// symbols table, carrying the author/date of the tagged revision so a
// synthetic tag commit can be attributed sensibly.
type tagRef struct {
	Name     string
	Path     string
	Revision rcs.Revision
	Date     time.Time
	Author   string
}

// parseAll walks cvsRoot for ,v files and reconstructs every file
// revision, fanning the parse work out over a worker pool sized to
// *workers and funneling results through a single channel that exactly one
// goroutine drains into the returned slice; run then feeds that slice to
// the reconstructor, which is not safe for concurrent Add calls. Tag
// references are collected separately, guarded by a mutex, since there are
// few of them relative to revisions and a channel's buffering would only
// add deadlock risk for no real benefit here.
func parseAll(ctx context.Context, logger *logrus.Logger, cfg *config.Config, cvsRoot string) ([]rcs.FileRevision, []tagRef, error) {
	paths, err := findRCSFiles(cvsRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", cvsRoot, err)
	}
	logger.Infof("found %d ,v files", len(paths))

	revCh := make(chan rcs.FileRevision, 1024)
	errCh := make(chan error, 1)
	var tagsMu sync.Mutex
	var tags []tagRef
	skipped := 0

	pool := pond.New(*workers, len(paths))
	var wg sync.WaitGroup
	wg.Add(len(paths))
	for _, p := range paths {
		p := p
		pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			revs, fileTags, err := parseOne(cfg, cvsRoot, p)
			if err != nil {
				var recErr *rcs.ReconstructionError
				if cfg.IgnoreFileErrors && !errors.As(err, &recErr) {
					logger.Warnf("skipping %s: %v", p, err)
					tagsMu.Lock()
					skipped++
					tagsMu.Unlock()
					return
				}
				select {
				case errCh <- fmt.Errorf("%s: %w", p, err):
				default:
				}
				return
			}
			for _, r := range revs {
				revCh <- r
			}
			if len(fileTags) > 0 {
				tagsMu.Lock()
				tags = append(tags, fileTags...)
				tagsMu.Unlock()
			}
		})
	}

	go func() {
		wg.Wait()
		pool.StopAndWait()
		close(revCh)
	}()

	var out []rcs.FileRevision
	for r := range revCh {
		out = append(out, r)
	}
	if skipped > 0 {
		logger.Warnf("skipped %d ,v files with errors", skipped)
	}

	select {
	case err := <-errCh:
		return nil, nil, err
	default:
	}
	return out, tags, nil
}

func parseOne(cfg *config.Config, cvsRoot, path string) ([]rcs.FileRevision, []tagRef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	logicalPath := logicalPath(cvsRoot, path)
	f, err := rcs.Parse(logicalPath, raw)
	if err != nil {
		return nil, nil, err
	}
	revs, err := f.FileRevisions(cfg.DefaultBranch)
	if err != nil {
		return nil, nil, err
	}
	for i := range revs {
		revs[i].Branch = cfg.MapBranch(revs[i].Branch)
	}

	var tags []tagRef
	for name, rev := range f.Admin.Symbols {
		if rev.IsBranch() {
			continue // branch tags don't name a single tagged revision
		}
		for _, r := range revs {
			if r.Revision.Equal(rev) {
				tags = append(tags, tagRef{Name: name, Path: logicalPath, Revision: rev, Date: r.Date, Author: r.Author})
				break
			}
		}
	}
	return revs, tags, nil
}

// logicalPath turns a ,v file's filesystem path under cvsRoot into the
// path it occupies in git: strip the cvsRoot prefix, drop the ",v" suffix,
// and remove any "Attic/" component CVS inserts for dead files.
func logicalPath(cvsRoot, path string) string {
	rel, err := filepath.Rel(cvsRoot, path)
	if err != nil {
		rel = path
	}
	rel = strings.TrimSuffix(rel, ",v")
	parts := strings.Split(rel, string(filepath.Separator))
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "Attic" {
			continue
		}
		kept = append(kept, part)
	}
	return filepath.ToSlash(filepath.Join(kept...))
}

func findRCSFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "CVSROOT" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, ",v") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// importer holds the mutable state threaded through commit construction:
// one node.Node tree per branch tracking which paths are currently live,
// so deletes and re-adds stay consistent with what git actually has on
// that branch.
type importer struct {
	ctx           context.Context
	logger        *logrus.Logger
	store         *store.Store
	writer        *fastimport.Writer
	marks         *fastimport.MarkAllocator
	audit         *audit.Log
	defaultBranch string
	branches      map[string]*node.Node

	// commitMarkOf[path][revision] is the mark of the patchset commit that
	// introduced that file revision, used to resolve a branch's first
	// commit's cross-branch parent. blobMarkOf[path][revision] is the mark
	// of the blob backing that revision's content, used to re-reference an
	// already-emitted blob from a synthetic tag commit without re-emitting
	// it. Both are keyed by (path, revision) rather than branch, since a
	// branch point always names a revision on another branch.
	commitMarkOf map[string]map[string]uint64
	blobMarkOf   map[string]map[string]uint64
}

func (imp *importer) treeFor(branch string) *node.Node {
	n, ok := imp.branches[branch]
	if !ok {
		n = &node.Node{}
		imp.branches[branch] = n
	}
	return n
}

// replay applies a previously-committed patchset's file changes to the
// in-memory branch tree, without re-emitting any fast-import commands,
// when resuming a run that crashed after this patchset was already made
// durable. It also rebuilds commitMarkOf/blobMarkOf for this patchset's
// members from the state store, since a resumed run never calls commit
// for them and would otherwise be unable to resolve cross-branch parents
// or re-materialize tags that reference their content.
func (imp *importer) replay(p *patchset.Patchset, mark uint64) error {
	tree := imp.treeFor(p.Branch)
	for _, m := range sortedMembers(p) {
		if m.Deleted {
			tree.DeleteFile(m.Path)
		} else {
			tree.AddFile(m.Path)
		}
		imp.recordCommitMark(m.Path, m.Revision.String(), mark)
		if !m.Deleted {
			blobMark, ok, err := imp.store.FileRevisionMark(imp.ctx, m.Path, m.Revision.String())
			if err != nil {
				return err
			}
			if ok {
				imp.recordBlobMark(m.Path, m.Revision.String(), blobMark)
			}
		}
	}
	return nil
}

func (imp *importer) recordCommitMark(path, revision string, mark uint64) {
	byRev, ok := imp.commitMarkOf[path]
	if !ok {
		byRev = make(map[string]uint64)
		imp.commitMarkOf[path] = byRev
	}
	byRev[revision] = mark
}

func (imp *importer) recordBlobMark(path, revision string, mark uint64) {
	byRev, ok := imp.blobMarkOf[path]
	if !ok {
		byRev = make(map[string]uint64)
		imp.blobMarkOf[path] = byRev
	}
	byRev[revision] = mark
}

// branchParentMark resolves the commit mark that a branch's first-ever
// patchset should be parented on: the commit that introduced the revision
// p's branch forked from, on whichever branch that revision lives on. Every
// member of p is on the same named branch, but each file numbers that
// branch independently, so the branch point is looked up per member; a
// member's branch point is only resolvable once that ancestor revision has
// itself been committed (or replayed) in this run. Among resolvable candidates,
// the highest mark (the most recent point in the parent's history) wins.
func (imp *importer) branchParentMark(p *patchset.Patchset) (string, bool) {
	var best uint64
	found := false
	for _, m := range p.Members {
		bp, ok := m.Revision.BranchPoint()
		if !ok {
			continue
		}
		byRev, ok := imp.commitMarkOf[m.Path]
		if !ok {
			continue
		}
		mark, ok := byRev[bp.String()]
		if !ok {
			continue
		}
		if !found || mark > best {
			best = mark
			found = true
		}
	}
	if !found {
		return "", false
	}
	return fastimport.Mark(best), true
}

// commit builds and emits one fast-import commit for p, returning the
// mark it was committed under.
func (imp *importer) commit(recID int64, p *patchset.Patchset) (uint64, error) {
	tree := imp.treeFor(p.Branch)
	ops := make([]fastimport.Op, 0, len(p.Members))
	for _, m := range sortedMembers(p) {
		if m.Deleted {
			ops = append(ops, fastimport.Delete{Path: m.Path})
			tree.DeleteFile(m.Path)
			continue
		}
		// Each reconstructed line already carries its own line ending.
		data := []byte(strings.Join(m.Lines, ""))
		sniffBinary(imp.logger, m.Path, data)

		mark := imp.marks.Next()
		if err := imp.writer.Blob(mark, data); err != nil {
			return 0, err
		}
		if err := imp.store.SetFileRevisionMark(imp.ctx, m.Path, m.Revision.String(), mark); err != nil {
			return 0, err
		}
		imp.recordBlobMark(m.Path, m.Revision.String(), mark)
		ops = append(ops, fastimport.Modify{Mode: fastimport.ModeFile, Mark: fastimport.Mark(mark), Path: m.Path})
		tree.AddFile(m.Path)
	}

	ref := "refs/heads/" + p.Branch
	var from string
	if parent, ok, err := imp.store.BranchHead(imp.ctx, p.Branch); err != nil {
		return 0, err
	} else if ok {
		from = fastimport.Mark(parent)
	} else if p.Branch != imp.defaultBranch {
		if parentFrom, ok := imp.branchParentMark(p); ok {
			from = parentFrom
		} else {
			imp.logger.Warnf("branch %q: no resolvable parent commit on its parent branch; starting as a root commit", p.Branch)
		}
	}

	ident := fastimport.Ident{Name: p.Author, Email: p.Author + "@cvs", When: time.Unix(p.Time, 0)}
	mark := imp.marks.Next()
	c := fastimport.Commit{
		Ref:       ref,
		Mark:      mark,
		Author:    ident,
		Committer: ident,
		Message:   p.Log,
		From:      from,
		Ops:       ops,
	}
	if err := imp.writer.Commit(c); err != nil {
		return 0, err
	}

	if err := imp.store.SetBranchHead(imp.ctx, p.Branch, mark); err != nil {
		return 0, err
	}
	if err := imp.store.SetPatchsetMark(imp.ctx, recID, mark); err != nil {
		return 0, err
	}
	for _, m := range p.Members {
		imp.recordCommitMark(m.Path, m.Revision.String(), mark)
	}
	if err := imp.audit.WritePatchset(p, mark); err != nil {
		return 0, err
	}
	return mark, nil
}

// materializeTags emits one synthetic commit per CVS tag name, pointing an
// annotated tag at it, reflecting the (path, revision) tuples that tag
// covers. Tags are re-materialized on every run, since cvs tag/rtag can
// move a tag to different revisions between runs: each run's synthetic
// commit is parented on the tag's own previous synthetic commit (if any),
// and the tag object itself is recreated to point at the newest one, so
// looking up the tag by name always reaches the current tagged state even
// though older synthetic commits remain reachable as history.
func (imp *importer) materializeTags(tags []tagRef) error {
	groups := make(map[string][]tagRef)
	for _, t := range tags {
		groups[t.Name] = append(groups[t.Name], t)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	baseline := imp.treeFor(imp.defaultBranch)
	baselineMark, hasBaseline, err := imp.store.BranchHead(imp.ctx, imp.defaultBranch)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := imp.materializeTag(name, groups[name], baseline, baselineMark, hasBaseline); err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
	}
	return nil
}

func (imp *importer) materializeTag(name string, refs []tagRef, baseline *node.Node, baselineMark uint64, hasBaseline bool) error {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })

	tagTree := &node.Node{}
	var ops []fastimport.Op
	var latest time.Time
	author := "cvsgitimport"
	for _, ref := range refs {
		byRev, ok := imp.blobMarkOf[ref.Path]
		var blobMark uint64
		if ok {
			blobMark, ok = byRev[ref.Revision.String()]
		}
		if !ok {
			imp.logger.Warnf("tag %q: no blob mark recorded for %s@%s, omitting from tag", name, ref.Path, ref.Revision)
			continue
		}
		ops = append(ops, fastimport.Modify{Mode: fastimport.ModeFile, Mark: fastimport.Mark(blobMark), Path: ref.Path})
		tagTree.AddFile(ref.Path)
		if ref.Date.After(latest) {
			latest = ref.Date
			author = ref.Author
		}
	}
	if len(ops) == 0 {
		imp.logger.Warnf("tag %q: no resolvable members, skipping", name)
		return nil
	}

	removed, _ := node.Diff(baseline, tagTree)
	sort.Strings(removed)
	for _, path := range removed {
		ops = append(ops, fastimport.Delete{Path: path})
	}

	bookkeepingRef := "cvsgitimport/tags/" + name
	var from string
	if parent, ok, err := imp.store.BranchHead(imp.ctx, bookkeepingRef); err != nil {
		return err
	} else if ok {
		from = fastimport.Mark(parent)
	} else if hasBaseline {
		from = fastimport.Mark(baselineMark)
	}

	ident := fastimport.Ident{Name: author, Email: author + "@cvs", When: latest}
	mark := imp.marks.Next()
	c := fastimport.Commit{
		Ref:       "refs/" + bookkeepingRef,
		Mark:      mark,
		Author:    ident,
		Committer: ident,
		Message:   fmt.Sprintf("tag %s\n", name),
		From:      from,
		Ops:       ops,
	}
	if err := imp.writer.Commit(c); err != nil {
		return err
	}
	if err := imp.store.SetBranchHead(imp.ctx, bookkeepingRef, mark); err != nil {
		return err
	}

	t := fastimport.Tag{
		Name:    name,
		From:    fastimport.Mark(mark),
		Tagger:  ident,
		Message: fmt.Sprintf("tag %s\n", name),
	}
	if err := imp.writer.TagCommand(t); err != nil {
		return err
	}

	for _, ref := range refs {
		if err := imp.store.UpsertTag(imp.ctx, name, ref.Path, ref.Revision.String()); err != nil {
			return err
		}
	}
	return nil
}

// sortedMembers orders a patchset's members by path then revision, giving
// deterministic M/D line order within one commit independent of the
// order revisions were buffered during parsing.
func sortedMembers(p *patchset.Patchset) []rcs.FileRevision {
	out := make([]rcs.FileRevision, len(p.Members))
	copy(out, p.Members)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Revision.Less(out[j].Revision)
	})
	return out
}

// sniffBinary logs a debug message when a file's leading bytes carry an
// image, video, archive or audio signature. It only logs: the RCS admin
// block's expand mode is not consulted and the blob content is not changed.
func sniffBinary(logger *logrus.Logger, path string, data []byte) {
	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	if filetype.IsImage(head) || filetype.IsVideo(head) || filetype.IsArchive(head) || filetype.IsAudio(head) {
		logger.Debugf("%s: sniffed as binary content", path)
	}
}
