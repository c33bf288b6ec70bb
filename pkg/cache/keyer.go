package cache

import (
	"time"

	"github.com/matzehuels/capmap/pkg/layout"
)

// LayoutKeyOpts holds the settings that change a computed layout.
// Parallel and sequential runs produce the same layout and share a key.
type LayoutKeyOpts struct {
	Config layout.Config `json:"config"`
}

// ArtifactKeyOpts holds the settings that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Stencil    string  `json:"stencil,omitempty"` // content hash of the stencil file
	Master     string  `json:"master,omitempty"`
	Template   string  `json:"template,omitempty"` // content hash of the template file
	Scale      float64 `json:"scale,omitempty"`
	Margin     float64 `json:"margin,omitempty"`
	Connectors bool    `json:"connectors,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a layout of the hierarchy with content hash
	// hierarchyHash.
	LayoutKey(hierarchyHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys an artifact rendered from the layout document with
	// content hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the input hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(hierarchyHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", hierarchyHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}

// Default time-to-live per entry kind. Layouts and artifacts are pure
// functions of their keys, so they only expire to bound disk use.
const (
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
