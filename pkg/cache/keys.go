package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// LayoutKeyOpts lists the options that change a computed layout.
type LayoutKeyOpts struct {
	VizType   string `json:"viz_type"`
	Placement string `json:"placement,omitempty"`
	Reach     string `json:"reach,omitempty"`
	Labels    string `json:"labels,omitempty"`
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	CellSize float64 `json:"cell_size,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys the layout of a term, identified by the hash of its
	// canonical text.
	LayoutKey(termHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys one rendered format of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// Hash returns the hex SHA-256 of data. Term and layout hashes, as well as
// file cache paths, are built from it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer keys entries as "<kind>:<sha256>", hashing the identifying
// hash and the options together.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(termHash string, opts LayoutKeyOpts) string {
	return digestKey("layout", termHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return digestKey("artifact", layoutHash, opts)
}

// digestKey hashes id and the JSON form of opts. Option structs only carry
// strings and numbers, so encoding cannot fail.
func digestKey(kind, id string, opts any) string {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	_ = json.NewEncoder(h).Encode(opts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// ScopedKeyer prepends a namespace to every key of an inner keyer, so the
// CLI and a server can share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) LayoutKey(termHash string, opts LayoutKeyOpts) string {
	return k.Prefix + k.Inner.LayoutKey(termHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(layoutHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = ScopedKeyer{}
)
