package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	"cip/internal/codec"
	"cip/internal/config"
	"cip/internal/logger"
	"cip/internal/resolver"
	"cip/pkg/imgutil"
)

// CandidatePattern selects the files of a directory considered for processing.
const CandidatePattern = "*.[a-z][a-z]g"

// Processor applies the configured operations to image files on fs.
type Processor struct {
	fs    afero.Fs
	codec codec.Codec
	cfg   config.Config
}

func New(fs afero.Fs, c codec.Codec, cfg config.Config) *Processor {
	return &Processor{fs: fs, codec: c, cfg: cfg}
}

// ListCandidates returns the visible regular files of dir matching
// CandidatePattern, sorted by name.
func (p *Processor) ListCandidates(dir string) ([]string, error) {
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Mode().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if ok, _ := filepath.Match(CandidatePattern, name); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Run processes every candidate of every directory in set, then every
// explicit file. It stops at the first error.
func (p *Processor) Run(ctx context.Context, set resolver.PathSet, updates chan<- ProgressUpdate) (Summary, error) {
	started := time.Now()
	summary := Summary{Directories: len(set.Directories)}

	send := func(update ProgressUpdate) {
		if updates != nil {
			updates <- update
		}
	}

	process := func(dir, name string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		send(ProgressUpdate{Current: filepath.Join(dir, name)})

		res, err := p.ProcessFile(dir, name)
		if err != nil {
			return fmt.Errorf("process %s: %w", filepath.Join(dir, name), err)
		}

		summary.Files++
		update := ProgressUpdate{Line: FormatLine(res)}
		if res.Skipped {
			summary.Skipped++
			update.SkippedDelta = 1
		} else {
			summary.Processed++
			summary.BytesBefore += res.OldSize
			summary.BytesAfter += res.NewSize
			update.ProcessedDelta = 1
			update.BytesBeforeDelta = res.OldSize
			update.BytesAfterDelta = res.NewSize
		}
		send(update)
		return nil
	}

	finish := func(err error) (Summary, error) {
		summary.Elapsed = time.Since(started)
		return summary, err
	}

	for _, dir := range set.Directories {
		names, err := p.ListCandidates(dir)
		if err != nil {
			return finish(err)
		}
		logger.Debug("Scanning directory", "dir", dir, "candidates", len(names))
		send(ProgressUpdate{TotalDelta: len(names)})

		for _, name := range names {
			if err := process(dir, name); err != nil {
				return finish(err)
			}
		}
	}

	send(ProgressUpdate{TotalDelta: len(set.Files)})
	for _, file := range set.Files {
		if err := process(filepath.Dir(file), filepath.Base(file)); err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

// ProcessFile runs the operation sequence on dir/name.
func (p *Processor) ProcessFile(dir, name string) (Result, error) {
	started := time.Now()
	path := filepath.Join(dir, name)
	res := Result{Dir: dir, Name: name, Path: path, Kind: imgutil.KindFromName(name)}

	info, err := p.fs.Stat(path)
	if err != nil {
		return res, err
	}
	if !info.Mode().IsRegular() {
		return res, fmt.Errorf("%s is not a regular file", path)
	}
	res.OldSize = info.Size()
	res.NewSize = info.Size()

	if res.Kind == imgutil.KindUnknown {
		logger.Warn("Skipping unsupported file", "path", path)
		res.Skipped = true
		res.Elapsed = time.Since(started)
		return res, nil
	}

	steps := Decide(res.Kind, p.cfg)
	for _, step := range steps {
		var done bool
		switch step {
		case ActionResize:
			done, err = p.resize(res.Path, res.Kind, info.Mode())
		case ActionCompress:
			done, err = true, p.compress(res.Path, info.Mode())
		case ActionConvert:
			var target string
			target, err = p.convert(res.Path, info.Mode())
			if err == nil {
				res.Path, res.Kind, done = target, imgutil.KindJPEG, true
			}
		case ActionErase:
			done, err = p.erase(path, res.Path)
		case ActionRename:
			continue
		}
		if err != nil {
			return res, fmt.Errorf("%s: %w", step, err)
		}
		if done {
			res.Actions = append(res.Actions, step)
		}
	}

	after, err := p.fs.Stat(res.Path)
	if err != nil {
		return res, err
	}
	res.NewSize = after.Size()

	if slices.Contains(steps, ActionRename) {
		renamed, err := p.rename(res.Path, dir)
		if err != nil {
			return res, fmt.Errorf("%s: %w", ActionRename, err)
		}
		res.Path = renamed
		res.Actions = append(res.Actions, ActionRename)
	}

	res.Elapsed = time.Since(started)
	logger.Debug("Processed file", "path", path, "actions", res.Actions, "old_size", res.OldSize, "new_size", res.NewSize)
	return res, nil
}

// FormatLine renders the per-file report line.
func FormatLine(res Result) string {
	if res.Skipped {
		return fmt.Sprintf("%s %s : skipped (%s)", res.Dir, res.Name, res.Kind)
	}
	return fmt.Sprintf("%s %s : %s %d %d", res.Dir, res.Name, Clock(res.Elapsed), res.OldSize, res.NewSize)
}

// Clock formats d as HH:MM:SS.
func Clock(d time.Duration) string {
	return time.Time{}.Add(d).Format("15:04:05")
}
