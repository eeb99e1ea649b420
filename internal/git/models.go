package git

import (
	"path"
	"strings"
	"time"
)

// CommitInfo represents minimal information about a Git commit.
type CommitInfo struct {
	SHA     string
	When    time.Time
	Author  AuthorInfo
	Message string
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// FileChange represents one file touched by one commit.
type FileChange struct {
	PreviousPath string // Set for renames and deletions
	CurrentPath  string // Empty for deletions
	Filename     string // Basename used for classification
	Type         ChangeType
}

// NewFileChange builds a FileChange and derives its Filename.
func NewFileChange(kind ChangeType, previousPath, currentPath string) FileChange {
	return FileChange{
		PreviousPath: previousPath,
		CurrentPath:  currentPath,
		Filename:     baseName(previousPath, currentPath),
		Type:         kind,
	}
}

func baseName(previousPath, currentPath string) string {
	p := currentPath
	if p == "" {
		p = previousPath
	}
	if p == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// ChangeType represents the type of change.
type ChangeType int

const (
	ChangeOther ChangeType = iota
	ChangeAdd
	ChangeModify
	ChangeRename
	ChangeDelete
)

// String returns a string representation of the change type.
func (k ChangeType) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeModify:
		return "modify"
	case ChangeRename:
		return "rename"
	case ChangeDelete:
		return "delete"
	default:
		return "other"
	}
}

// CommitChangeSet bundles a commit with its file changes.
type CommitChangeSet struct {
	Commit  CommitInfo
	Changes []FileChange
}

// RenameDetectMode controls how file renames are detected.
type RenameDetectMode int

const (
	RenameDetectOff RenameDetectMode = iota
	RenameDetectSimple
	RenameDetectAggressive
)

// ParseRenameDetectMode maps a config/CLI value to a mode. Unknown values
// fall back to simple detection.
func ParseRenameDetectMode(s string) RenameDetectMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return RenameDetectOff
	case "aggressive":
		return RenameDetectAggressive
	default:
		return RenameDetectSimple
	}
}

// WalkOptions configures a history walk.
type WalkOptions struct {
	RepoPath      string
	Extensions    []string // e.g. ".py"; a change is kept when either path has one of them
	Include       []string // Glob patterns to include
	Exclude       []string // Glob patterns to exclude
	Chronological bool     // Oldest commit first
	NoMerges      bool     // Skip commits with more than one parent
	RenameDetect  RenameDetectMode
}
