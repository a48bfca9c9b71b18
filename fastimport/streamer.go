package fastimport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// maxStderrTail bounds how much of a failing subprocess's stderr gets
// folded into a StreamError; enough to show the actual git fast-import
// diagnostic without unbounded memory growth on a runaway subprocess.
const maxStderrTail = 16 * 1024

// Streamer drives a `git fast-import` subprocess: it owns the subprocess's
// stdin pipe (wrapped in a Writer) and forwards its combined stdout/stderr,
// line by line, to a logger, since fast-import's own progress/checkpoint
// acknowledgements and any warnings it emits interleave unpredictably.
type Streamer struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	writer    *Writer
	log       *logrus.Logger
	marksPath string

	wg      sync.WaitGroup
	pumpErr error
	stderr  tailBuffer

	mu            sync.Mutex
	waiters       map[string]chan struct{}
	checkpointSeq uint64
}

// NewStreamer starts `git fast-import` with its working directory set to
// gitDir, which must already be a git repository (or bare repository).
// marksPath is handed to `--export-marks`, so every run's marks survive the
// subprocess; if marksPath already holds content from a previous run (the
// caller is responsible for writing it there before calling NewStreamer),
// it is also handed to `--import-marks`, keeping mark references made by an
// earlier, now-dead subprocess resolvable in this one.
func NewStreamer(ctx context.Context, gitDir, marksPath string, log *logrus.Logger) (*Streamer, error) {
	args := []string{"fast-import", "--done", "--stats", "--export-marks=" + marksPath}
	if info, err := os.Stat(marksPath); err == nil && info.Size() > 0 {
		args = append(args, "--import-marks="+marksPath)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = gitDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &StreamError{Op: "start", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &StreamError{Op: "start", Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &StreamError{Op: "start", Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &StreamError{Op: "start", Cause: err}
	}

	s := &Streamer{
		cmd:       cmd,
		stdin:     stdin,
		writer:    NewWriter(stdin),
		log:       log,
		marksPath: marksPath,
		waiters:   make(map[string]chan struct{}),
	}
	s.wg.Add(2)
	go s.pump(stdout, "stdout")
	go s.pump(stderr, "stderr")
	return s, nil
}

func (s *Streamer) pump(r io.Reader, stream string) {
	defer s.wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if stream == "stderr" {
			s.stderr.WriteString(line + "\n")
		}
		if stream == "stdout" {
			if ch, ok := s.takeWaiter(line); ok {
				close(ch)
				continue
			}
		}
		s.log.WithField("stream", stream).Info(line)
	}
	if err := scanner.Err(); err != nil {
		s.pumpErr = fmt.Errorf("%s: %w", stream, err)
	}
}

func (s *Streamer) takeWaiter(line string) (chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.waiters[line]
	if ok {
		delete(s.waiters, line)
	}
	return ch, ok
}

// Writer returns the Writer to use for emitting commands.
func (s *Streamer) Writer() *Writer { return s.writer }

// CheckpointAndWait forces a packfile checkpoint and blocks until git
// fast-import has actually processed it, by following the checkpoint with
// a uniquely tagged progress command and waiting for that progress line to
// appear on the subprocess's stdout. Since fast-import processes stdin
// strictly in order, seeing the tag echoed back proves the preceding
// checkpoint's marks flush (to --export-marks) has already happened. It
// returns the exported marks file's contents at that point.
func (s *Streamer) CheckpointAndWait(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	s.checkpointSeq++
	marker := fmt.Sprintf("cvsgitimport-checkpoint-%d", s.checkpointSeq)
	ch := make(chan struct{})
	// fast-import echoes the whole command line, "progress <msg>".
	s.waiters["progress "+marker] = ch
	s.mu.Unlock()

	if err := s.writer.Checkpoint(); err != nil {
		return nil, err
	}
	if err := s.writer.Progress(marker); err != nil {
		return nil, err
	}
	if err := s.writer.Flush(); err != nil {
		return nil, err
	}

	select {
	case <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.readMarksFile()
}

func (s *Streamer) readMarksFile() ([]byte, error) {
	raw, err := os.ReadFile(s.marksPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StreamError{Op: "read marks", Cause: err}
	}
	return raw, nil
}

// Close emits "done", flushes, closes stdin, and waits for the subprocess
// to exit, returning its error (including the last bytes of its stderr) if
// it exited non-zero or its output pumps hit a read error. On a clean exit
// it also returns the final contents of the exported marks file.
func (s *Streamer) Close() ([]byte, error) {
	if err := s.writer.Done(); err != nil {
		s.stdin.Close()
		s.cmd.Wait()
		return nil, err
	}
	if err := s.writer.Flush(); err != nil {
		s.stdin.Close()
		s.cmd.Wait()
		return nil, err
	}
	if err := s.stdin.Close(); err != nil {
		return nil, &StreamError{Op: "close", Cause: err}
	}
	s.wg.Wait()
	if err := s.cmd.Wait(); err != nil {
		return nil, &StreamError{Op: "wait", Cause: err, Stderr: s.stderr.String()}
	}
	if s.pumpErr != nil {
		return nil, &StreamError{Op: "pump", Cause: s.pumpErr, Stderr: s.stderr.String()}
	}
	raw, err := s.readMarksFile()
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// tailBuffer retains only the last maxStderrTail bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (t *tailBuffer) WriteString(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, s...)
	if len(t.buf) > maxStderrTail {
		t.buf = t.buf[len(t.buf)-maxStderrTail:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimRight(string(t.buf), "\n")
}
