package git

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// recordSeparator prefixes every commit header in the log output.
const recordSeparator = 0x1e

// Each commit header line is prefixed by 0x1e (record separator), then
// NUL-separated fields, and ends with a newline. This makes the --raw -z
// output reliably parseable as records split by 0x1e.
const cliLogFormat = "%x1e%H%x00%P%x00%cI%x00%an%x00%ae%x00%s%n"

// maxRecordSize bounds a single commit record (header plus --raw entries).
const maxRecordSize = 64 << 20

type gitRawEntry struct {
	srcMode gitFileMode
	dstMode gitFileMode
	status  string // e.g. "M", "A", "D", "R100"
	path    string // destination path (or path for non-renames)
	oldPath string // source path for renames and copies
}

// CLIProvider walks history by streaming the output of the git binary.
type CLIProvider struct {
	// GitPath is the git executable; "git" when empty.
	GitPath string
}

// NewCLIProvider creates a provider that shells out to git.
func NewCLIProvider() *CLIProvider {
	return &CLIProvider{GitPath: "git"}
}

func (p *CLIProvider) logArgs(opts WalkOptions) []string {
	args := []string{
		"-C", opts.RepoPath,
		"log",
		"--no-color",
		"--root",
		"--pretty=format:" + cliLogFormat,
		"--raw", "-z",
	}
	if opts.Chronological {
		args = append(args, "--reverse")
	}
	if opts.NoMerges {
		args = append(args, "--no-merges")
	}

	switch opts.RenameDetect {
	case RenameDetectOff:
		args = append(args, "--no-renames")
	case RenameDetectSimple:
		args = append(args, "-M100%")
	case RenameDetectAggressive:
		// Match go-git's default threshold (60).
		args = append(args, "-M60%")
	}

	return args
}

// Walk runs git log and parses commits as they arrive on stdout.
func (p *CLIProvider) Walk(ctx context.Context, opts WalkOptions, fn func(CommitChangeSet) error) error {
	filter, err := newPathFilter(opts)
	if err != nil {
		return err
	}

	bin := p.GitPath
	if bin == "" {
		bin = "git"
	}

	// The callback may stop the walk early; cancelling kills git.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, p.logArgs(opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "git log stdout")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "start git log")
	}

	walkErr := walkRecords(stdout, filter, fn)
	if walkErr != nil {
		cancel()
		_, _ = io.Copy(io.Discard, stdout)
		_ = cmd.Wait()
		return walkErr
	}

	if err := cmd.Wait(); err != nil {
		if strings.Contains(stderr.String(), "does not have any commits") {
			return nil
		}
		return errors.Wrapf(err, "git log failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}

// walkRecords parses commit records from r and hands each one to fn.
func walkRecords(r io.Reader, filter *pathFilter, fn func(CommitChangeSet) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	scanner.Split(splitRecords)

	for scanner.Scan() {
		rec := scanner.Bytes()
		if len(rec) == 0 {
			continue
		}

		cs, ok, err := parseRecord(rec, filter)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := fn(cs); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read git log output")
	}
	return nil
}

// splitRecords is a bufio.SplitFunc yielding the bytes between record separators.
func splitRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, recordSeparator); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// parseRecord turns one commit record into a change set. ok is false when
// no change survives the filter.
func parseRecord(rec []byte, filter *pathFilter) (CommitChangeSet, bool, error) {
	header, body := splitHeaderBody(rec)
	if len(header) == 0 {
		return CommitChangeSet{}, false, nil
	}

	fields := bytes.SplitN(header, []byte{0x00}, 6)
	if len(fields) < 6 {
		return CommitChangeSet{}, false, errors.New("unexpected git log header format")
	}

	when, err := time.Parse(time.RFC3339, string(fields[2]))
	if err != nil {
		return CommitChangeSet{}, false, errors.Wrap(err, "parse committer date")
	}

	rawEntries, err := parseGitRawEntries(body)
	if err != nil {
		return CommitChangeSet{}, false, err
	}

	changes := make([]FileChange, 0, len(rawEntries))
	for _, e := range rawEntries {
		if !e.srcMode.IsFile() && !e.dstMode.IsFile() {
			continue
		}
		if e.path == "" {
			continue
		}

		fc := changeFromRawEntry(e)
		if !filter.matchChange(fc) {
			continue
		}
		changes = append(changes, fc)
	}

	if len(changes) == 0 {
		return CommitChangeSet{}, false, nil
	}

	return CommitChangeSet{
		Commit: CommitInfo{
			SHA:     string(fields[0]),
			When:    when,
			Author:  AuthorInfo{Name: string(fields[3]), Email: string(fields[4])},
			Message: string(fields[5]),
		},
		Changes: changes,
	}, true, nil
}

func splitHeaderBody(rec []byte) (header []byte, body []byte) {
	// The pretty line is followed by '\n', then diff output.
	if idx := bytes.IndexByte(rec, '\n'); idx != -1 {
		return rec[:idx], rec[idx+1:]
	}
	return rec, nil
}

func parseGitRawEntries(body []byte) ([]gitRawEntry, error) {
	i := 0
	skipSeparators(body, &i)

	entries := make([]gitRawEntry, 0, 16)

	for i < len(body) && body[i] == ':' {
		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, errors.New("unexpected git --raw format (missing NUL)")
		}

		fields := strings.Fields(string(meta))
		if len(fields) < 5 {
			return nil, errors.Newf("unexpected git --raw meta: %q", string(meta))
		}

		srcMode, err := parseGitFileMode(strings.TrimPrefix(fields[0], ":"))
		if err != nil {
			return nil, err
		}
		dstMode, err := parseGitFileMode(fields[1])
		if err != nil {
			return nil, err
		}

		status := fields[len(fields)-1]

		path1, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, errors.New("unexpected git --raw format (missing path)")
		}

		path := path1
		oldPath := ""
		if len(status) > 0 && (status[0] == 'R' || status[0] == 'C') {
			path2, ok := readStringUntilNUL(body, &i)
			if !ok {
				return nil, errors.New("unexpected git --raw format (missing rename path)")
			}
			oldPath = path1
			path = path2
		}

		entries = append(entries, gitRawEntry{
			srcMode: srcMode,
			dstMode: dstMode,
			status:  status,
			path:    path,
			oldPath: oldPath,
		})

		skipSeparators(body, &i)
	}

	return entries, nil
}

// changeFromRawEntry maps a --raw status letter to a FileChange.
// Copies and unknown statuses become ChangeOther; type changes count as
// modifications.
func changeFromRawEntry(e gitRawEntry) FileChange {
	if e.status == "" {
		return NewFileChange(ChangeModify, "", e.path)
	}
	switch e.status[0] {
	case 'A':
		return NewFileChange(ChangeAdd, "", e.path)
	case 'D':
		return NewFileChange(ChangeDelete, e.path, "")
	case 'R':
		return NewFileChange(ChangeRename, e.oldPath, e.path)
	case 'M', 'T':
		return NewFileChange(ChangeModify, "", e.path)
	default:
		return NewFileChange(ChangeOther, e.oldPath, e.path)
	}
}

// skipSeparators steps over the newlines and NULs git puts between the
// header, the --raw entries and the next commit.
func skipSeparators(b []byte, i *int) {
	for *i < len(b) && (b[*i] == '\n' || b[*i] == '\r' || b[*i] == 0) {
		*i++
	}
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	end := *i + j
	*i = end + 1
	return b[start:end], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}
