// Package catalog loads the destination catalog shown before a booking starts.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/tourbook/internal/domain"
)

//go:embed destinations.yaml
var embedded []byte

type file struct {
	Destinations []domain.Destination `yaml:"destinations"`
}

// Default returns the catalog compiled into the binary.
func Default() ([]domain.Destination, error) {
	return decode(embedded)
}

// LoadFile reads a catalog from path.
func LoadFile(path string) ([]domain.Destination, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a catalog in YAML form and checks it for duplicate or blank refs.
func Load(r io.Reader) ([]domain.Destination, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	return decode(data)
}

func decode(data []byte) ([]domain.Destination, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := check(f.Destinations); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return f.Destinations, nil
}

func check(dests []domain.Destination) error {
	seen := make(map[string]bool, len(dests))
	for i, d := range dests {
		if strings.TrimSpace(d.Ref) == "" {
			return fmt.Errorf("destination #%d has no ref: %w", i+1, domain.ErrValidation)
		}
		if seen[d.Ref] {
			return fmt.Errorf("duplicate destination %q: %w", d.Ref, domain.ErrValidation)
		}
		seen[d.Ref] = true

		flow, ok := domain.ParseFlowKind(string(d.Flow))
		if !ok {
			return fmt.Errorf("destination %q: unknown flow %q: %w", d.Ref, d.Flow, domain.ErrValidation)
		}
		dests[i].Flow = flow

		pkgs := make(map[string]bool, len(d.Packages))
		for _, p := range d.Packages {
			if strings.TrimSpace(p.Ref) == "" {
				return fmt.Errorf("destination %q has a package without ref: %w", d.Ref, domain.ErrValidation)
			}
			if pkgs[p.Ref] {
				return fmt.Errorf("destination %q: duplicate package %q: %w", d.Ref, p.Ref, domain.ErrValidation)
			}
			pkgs[p.Ref] = true
		}
	}
	return nil
}
