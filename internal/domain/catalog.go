package domain

// Destination is an entry of the destination catalog.
type Destination struct {
	Ref         string    `json:"ref" yaml:"ref"`
	Name        string    `json:"name" yaml:"name"`
	Flow        FlowKind  `json:"flow" yaml:"flow"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Packages    []Package `json:"packages" yaml:"packages"`
}

// Package is a bookable offer of a destination.
type Package struct {
	Ref           string   `json:"ref" yaml:"ref"`
	Name          string   `json:"name" yaml:"name"`
	PriceLabel    string   `json:"price_label" yaml:"price_label"`
	DurationLabel string   `json:"duration_label" yaml:"duration_label"`
	IncludedItems []string `json:"included_items" yaml:"included_items"`
}

// FindPackage returns the package with ref and whether it exists.
func (d Destination) FindPackage(ref string) (Package, bool) {
	for _, p := range d.Packages {
		if p.Ref == ref {
			return p, true
		}
	}
	return Package{}, false
}
