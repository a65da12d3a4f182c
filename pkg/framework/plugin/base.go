package plugin

import (
	"fmt"

	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
)

// Base provides core functionality for all plugins: metadata and the
// parameter registry shared by every instance.
type Base struct {
	Info   Info
	params *param.Registry
}

// NewBase creates a new plugin base
func NewBase(info Info) *Base {
	return &Base{
		Info:   info,
		params: param.NewRegistry(),
	}
}

// Parameters returns the parameter registry for configuration
func (b *Base) Parameters() *param.Registry {
	return b.params
}

// Freeze validates the metadata and freezes the registry. Instances can only
// be created afterwards.
func (b *Base) Freeze() error {
	if err := b.Info.Validate(); err != nil {
		return err
	}
	if err := b.params.Freeze(); err != nil {
		return fmt.Errorf("%s: %w", b.Info.Name, err)
	}
	return nil
}

// NewHub creates the mailboxes connecting the processor and the controller
// of one instance.
func (b *Base) NewHub() *message.Hub {
	return b.params.NewHub()
}
