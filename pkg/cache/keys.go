package cache

// Keyer builds cache keys for the kinds of data mapsvg caches.
type Keyer interface {
	// HTTPKey is the key of a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// TopologyKey is the key of a decoded-ready topology document.
	TopologyKey(source string) string
	// DataKey is the key of a region data document of the given type.
	DataKey(source, dataType string) string
	// RenderKey is the key of a rendered map document.
	RenderKey(optionsHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the output settings that make two renders of the same
// options differ.
type RenderKeyOpts struct {
	Format string  `json:"format"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Static bool    `json:"static,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TopologyKey hashes the source location.
func (DefaultKeyer) TopologyKey(source string) string {
	return hashKey("topology", source)
}

// DataKey hashes the source location and data type.
func (DefaultKeyer) DataKey(source, dataType string) string {
	return hashKey("data", source, dataType)
}

// RenderKey hashes the options hash together with the output settings.
func (DefaultKeyer) RenderKey(optionsHash string, opts RenderKeyOpts) string {
	return hashKey("render", optionsHash, opts)
}
