package jsgain

import (
	"fmt"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
)

// Instance is one loaded copy of the effect. The processor and the
// controller only communicate through the mailboxes of their shared hub.
type Instance struct {
	Processor  *Processor
	Controller *Controller
}

// NewInstance creates a processor and a controller connected to each other.
func NewInstance(params *Parameters, clock Clock, logger *debug.Logger) (*Instance, error) {
	hub := params.NewHub()
	proc, err := NewProcessor(params, hub, clock)
	if err != nil {
		return nil, fmt.Errorf("create processor: %w", err)
	}
	ctrl, err := NewController(params, hub, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}
	return &Instance{Processor: proc, Controller: ctrl}, nil
}
