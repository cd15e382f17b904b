package domain

import (
	"fmt"
	"strings"
)

// FlowKind distinguishes the two booking entry points. Both run the same
// workflow; they differ only in the injected FlowRules and package context.
type FlowKind string

const (
	FlowExperience  FlowKind = "experience"
	FlowDestination FlowKind = "destination"
)

// ParseFlowKind returns the FlowKind for s. An empty string means the
// destination flow.
func ParseFlowKind(s string) (FlowKind, bool) {
	switch FlowKind(strings.ToLower(strings.TrimSpace(s))) {
	case FlowExperience:
		return FlowExperience, true
	case FlowDestination, "":
		return FlowDestination, true
	default:
		return "", false
	}
}

// FlowRules are the configurable bounds checked by the trip details step.
// A zero value disables the corresponding bound.
type FlowRules struct {
	MaxTripDays  int
	MaxGroupSize int
}

// ExperienceRules are the bounds used by the experience booking flow.
var ExperienceRules = FlowRules{MaxTripDays: 30, MaxGroupSize: 20}

// PackageContext is the entry contract of a reservation session: the
// destination and package the user chose before opening the booking flow.
type PackageContext struct {
	Flow           FlowKind `json:"flow"`
	DestinationRef string   `json:"destination_ref"`
	PackageRef     string   `json:"package_ref"`
	PriceLabel     string   `json:"price_label"`
	DurationLabel  string   `json:"duration_label"`
	IncludedItems  []string `json:"included_items"`
}

// Validate reports ErrMissingContext when either reference is blank.
func (p PackageContext) Validate() error {
	var missing []string
	if strings.TrimSpace(p.DestinationRef) == "" {
		missing = append(missing, "destination_ref")
	}
	if strings.TrimSpace(p.PackageRef) == "" {
		missing = append(missing, "package_ref")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingContext, strings.Join(missing, ", "))
	}
	return nil
}
