package processor

import (
	"time"

	"cip/pkg/imgutil"
)

// Action is one step of the per-file operation sequence.
type Action int

const (
	ActionResize Action = iota
	ActionConvert
	ActionCompress
	ActionErase
	ActionRename
)

func (a Action) String() string {
	switch a {
	case ActionResize:
		return "resize"
	case ActionConvert:
		return "convert"
	case ActionCompress:
		return "compress"
	case ActionErase:
		return "erase"
	case ActionRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Result describes one processed file.
type Result struct {
	Dir  string
	Name string
	// Path is where the file lives once every action ran.
	Path    string
	Kind    imgutil.Kind
	Actions []Action
	Skipped bool
	OldSize int64
	NewSize int64
	Elapsed time.Duration
}

type Summary struct {
	Directories int
	Files       int
	Processed   int
	Skipped     int
	BytesBefore int64
	BytesAfter  int64
	Elapsed     time.Duration
}

// Plan is the dry-run view of a file produced by Inspect.
type Plan struct {
	Dir      string
	Name     string
	Kind     imgutil.Kind
	Content  imgutil.Kind
	Size     int64
	Width    int
	Height   int
	Eligible bool
	Actions  []Action
	Camera   string
	Taken    string
	Err      error
}

type ProgressUpdate struct {
	TotalDelta       int
	ProcessedDelta   int
	SkippedDelta     int
	BytesBeforeDelta int64
	BytesAfterDelta  int64
	Current          string
	Line             string
}
