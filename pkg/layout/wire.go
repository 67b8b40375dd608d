package layout

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Wire message types. These strings are part of the worker protocol.
const (
	wireTick  = "tick"
	wireEnd   = "end"
	wireError = "error"
)

type wireTickMessage struct {
	Type     string  `json:"type"`
	Progress float64 `json:"progress"`
}

// wireEndMessage always carries both arrays, empty ones included.
type wireEndMessage struct {
	Type  string     `json:"type"`
	Nodes []NodeData `json:"nodes"`
	Links []LinkData `json:"links"`
}

type wireErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// wireMessage is the decoding side of all three kinds.
type wireMessage struct {
	Type     string     `json:"type"`
	Progress *float64   `json:"progress"`
	Nodes    []NodeData `json:"nodes"`
	Links    []LinkData `json:"links"`
	Error    string     `json:"error"`
}

// MarshalMessage encodes m in the worker wire format:
// {"type":"tick","progress":p} or {"type":"end","nodes":[...],"links":[...]}.
func MarshalMessage(m Message) ([]byte, error) {
	switch m := m.(type) {
	case Progress:
		return json.Marshal(wireTickMessage{Type: wireTick, Progress: m.Value})
	case Done:
		return json.Marshal(wireEndMessage{Type: wireEnd, Nodes: nonNilNodes(m.Nodes), Links: nonNilLinks(m.Links)})
	case Failed:
		msg := "unknown error"
		if m.Err != nil {
			msg = m.Err.Error()
		}
		return json.Marshal(wireErrorMessage{Type: wireError, Error: msg})
	default:
		return nil, fmt.Errorf("layout: cannot encode message %T", m)
	}
}

// UnmarshalMessage decodes one wire message.
func UnmarshalMessage(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding worker message: %w", err)
	}
	switch w.Type {
	case wireTick:
		if w.Progress == nil {
			return nil, errors.New("decoding worker message: tick without progress")
		}
		return Progress{Value: *w.Progress}, nil
	case wireEnd:
		return Done{Nodes: nonNilNodes(w.Nodes), Links: nonNilLinks(w.Links)}, nil
	case wireError:
		return Failed{Err: errors.New(w.Error)}, nil
	default:
		return nil, fmt.Errorf("decoding worker message: unknown type %q", w.Type)
	}
}

func nonNilNodes(nodes []NodeData) []NodeData {
	if nodes == nil {
		return []NodeData{}
	}
	return nodes
}

func nonNilLinks(links []LinkData) []LinkData {
	if links == nil {
		return []LinkData{}
	}
	return links
}

// ServeWorker is the child-process side of the protocol: it reads one JSON
// request from r, runs it, and writes every message to w as one JSON line.
func ServeWorker(ctx context.Context, r io.Reader, w io.Writer, cfg Config, logger *slog.Logger) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decoding layout request: %w", err)
	}

	bw := bufio.NewWriter(w)
	for m := range Run(ctx, req, cfg, logger) {
		data, err := MarshalMessage(m)
		if err != nil {
			return err
		}
		// Flush per message so the parent sees progress as it happens.
		if _, err := bw.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing layout message: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("writing layout message: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return ErrCanceled
	}
	return nil
}
