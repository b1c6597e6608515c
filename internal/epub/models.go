package epub

// OPF represents the parsed Open Package Format document.
type OPF struct {
	Metadata Metadata
	Manifest map[string]ManifestItem // id -> item
	Spine    []SpineItem
	NCXPath  string
}

// Metadata is the subset of OPF metadata the extraction pipeline surfaces.
type Metadata struct {
	Title      string
	Creator    string
	Language   string
	Identifier string
}

// ManifestItem represents an item in the manifest.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// SpineItem represents an item reference in the spine.
type SpineItem struct {
	IDRef  string
	Href   string
	Linear bool
}

// SpinePaths returns the hrefs of the linear reading order, in order.
func (o *OPF) SpinePaths() []string {
	paths := make([]string, 0, len(o.Spine))
	for _, s := range o.Spine {
		if s.Linear && s.Href != "" {
			paths = append(paths, s.Href)
		}
	}
	return paths
}
