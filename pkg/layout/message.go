package layout

import (
	"errors"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// NodeData is a node as it crosses the worker boundary.
// A node with X and Y both zero has no position yet.
type NodeData struct {
	ID model.PersonID `json:"id"`
	X  float64        `json:"x"`
	Y  float64        `json:"y"`
}

// LinkData is a link as it crosses the worker boundary.
type LinkData struct {
	Source model.PersonID `json:"source"`
	Target model.PersonID `json:"target"`
	Weight int            `json:"weight,omitempty"`
}

// Request is the one-shot input of a layout run.
type Request struct {
	Nodes       []NodeData `json:"nodes"`
	Links       []LinkData `json:"links"`
	GraphWidth  float64    `json:"graphWidth"`
	GraphHeight float64    `json:"graphHeight"`
}

// Message is one item of a run's output stream: any number of Progress
// messages followed by exactly one Done or Failed.
type Message interface {
	message()
}

// Progress reports the fraction of ticks completed, in [0,1].
type Progress struct {
	Value float64
}

// Done carries the final positions. It is always the last message of a
// successful run and overrides any earlier progress.
type Done struct {
	Nodes []NodeData
	Links []LinkData
}

// Failed ends a run that could not complete.
type Failed struct {
	Err error
}

func (Progress) message() {}
func (Done) message()     {}
func (Failed) message()   {}

var (
	// ErrCanceled is reported when a run is replaced before finishing.
	ErrCanceled = errors.New("layout: run canceled")
	// ErrUnknownNode is returned by Apply when the result names a node the
	// graph does not have.
	ErrUnknownNode = errors.New("layout: unknown node in result")
	// ErrWorkerExited is reported when a worker stops without a final message.
	ErrWorkerExited = errors.New("layout: worker exited without result")
)
