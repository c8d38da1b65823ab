package models

// Scope represents one searchable slice of the site, a whole state or a
// single city. Path is the search page path without the page parameter.
type Scope struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}
