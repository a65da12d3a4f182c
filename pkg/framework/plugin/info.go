package plugin

import (
	"crypto/md5"
	"errors"
)

// ErrEmptyID is returned by Validate when the plugin has no id.
var ErrEmptyID = errors.New("plugin id is empty")

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// Validate checks the metadata needed to derive class ids.
func (i Info) Validate() error {
	if i.ID == "" {
		return ErrEmptyID
	}
	return nil
}

// UID derives a stable 16-byte class id from the plugin id.
func (i Info) UID() [16]byte {
	return md5.Sum([]byte(i.ID))
}

// ControllerUID returns the class id of the controller.
func (i Info) ControllerUID() [16]byte {
	return md5.Sum([]byte(i.ID + ".controller"))
}
