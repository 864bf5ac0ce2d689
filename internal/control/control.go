// Package control talks to the untrusted programs that steer each roster.
package control

import (
	"context"

	"github.com/arenaharness/harness/pkg/core"
)

// Request is sent to a control program once per round for every unit it owns.
type Request struct {
	Seq    uint64    `json:"seq"`
	Round  int       `json:"round"`
	Team   core.Side `json:"team"`
	Unit   core.Body `json:"unit"`
	Memory []int64   `json:"memory"`
}

// Response is what a control program answers. Action is opaque to the
// harness; MemoryWrites maps slot index to new value.
type Response struct {
	Seq          uint64        `json:"seq"`
	Action       string        `json:"action,omitempty"`
	MemoryWrites map[int]int64 `json:"memoryWrites,omitempty"`
}

// Provider supplies decisions for one side.
type Provider interface {
	Name() string
	Act(ctx context.Context, req Request) (Response, error)
	Close() error
}

// Null is the provider bound to a side nobody controls. Its units idle.
type Null struct{}

func (Null) Name() string { return "null" }

func (Null) Act(_ context.Context, req Request) (Response, error) {
	return Response{Seq: req.Seq}, nil
}

func (Null) Close() error { return nil }
