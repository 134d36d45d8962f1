package stream

import (
	"encoding/xml"
	"time"

	"github.com/temirov/ptree/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart     EventKind = "start"
	EventKindDirectory EventKind = "directory"
	EventKindFile      EventKind = "file"
	EventKindSummary   EventKind = "summary"
	EventKindWarning   EventKind = "warning"
	EventKindError     EventKind = "error"
	EventKindTree      EventKind = "tree"
	EventKindDone      EventKind = "done"
)

type DirectoryPhase string

const (
	DirectoryEnter DirectoryPhase = "enter"
	DirectoryLeave DirectoryPhase = "leave"
)

type Event struct {
	XMLName   xml.Name  `json:"-" xml:"event"`
	Version   int       `json:"version" xml:"version,attr"`
	Kind      EventKind `json:"kind" xml:"kind,attr"`
	Command   string    `json:"command,omitempty" xml:"command,attr,omitempty"`
	Path      string    `json:"path,omitempty" xml:"path,attr,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty" xml:"emittedAt,attr,omitempty"`

	Project   *ProjectEvent       `json:"project,omitempty" xml:"project,omitempty"`
	Directory *DirectoryEvent     `json:"directory,omitempty" xml:"directory,omitempty"`
	File      *FileEvent          `json:"file,omitempty" xml:"file,omitempty"`
	Summary   *SummaryEvent       `json:"summary,omitempty" xml:"summary,omitempty"`
	Message   *LogEvent           `json:"message,omitempty" xml:"message,omitempty"`
	Err       *ErrorEvent         `json:"error,omitempty" xml:"error,omitempty"`
	Tree      *types.NodeDocument `json:"tree,omitempty" xml:"tree,omitempty"`
}

// ProjectEvent identifies the project a stream belongs to; it rides on the start event.
type ProjectEvent struct {
	ID   string `json:"id" xml:"id,attr"`
	Name string `json:"name" xml:"name,attr"`
	Path string `json:"path" xml:"path,attr"`
}

type DirectoryEvent struct {
	Phase     DirectoryPhase `json:"phase" xml:"phase,attr"`
	ID        string         `json:"id" xml:"id,attr"`
	Path      string         `json:"path" xml:"path,attr"`
	Name      string         `json:"name,omitempty" xml:"name,attr,omitempty"`
	Depth     int            `json:"depth,omitempty" xml:"depth,attr,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty" xml:"updatedAt,attr,omitempty"`
	Summary   *SummaryEvent  `json:"summary,omitempty" xml:"summary,omitempty"`
}

type FileEvent struct {
	ID        string `json:"id" xml:"id,attr"`
	Path      string `json:"path" xml:"path,attr"`
	Name      string `json:"name" xml:"name,attr"`
	Depth     int    `json:"depth,omitempty" xml:"depth,attr,omitempty"`
	SizeBytes uint64 `json:"sizeBytes" xml:"sizeBytes,attr"`
	Lines     uint64 `json:"lines" xml:"lines,attr"`
	Tokens    uint64 `json:"tokens,omitempty" xml:"tokens,attr,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" xml:"updatedAt,attr,omitempty"`
}

type SummaryEvent struct {
	Files       int       `json:"files" xml:"files,attr"`
	Directories int       `json:"directories" xml:"directories,attr"`
	Bytes       uint64    `json:"bytes" xml:"bytes,attr"`
	Lines       uint64    `json:"lines" xml:"lines,attr"`
	Tokens      uint64    `json:"tokens,omitempty" xml:"tokens,attr,omitempty"`
	Model       string    `json:"model,omitempty" xml:"model,attr,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" xml:"updatedAt,attr,omitempty"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty" xml:"level,attr,omitempty"`
	Message string `json:"message" xml:",chardata"`
}

type ErrorEvent struct {
	Message string `json:"message" xml:",chardata"`
}
