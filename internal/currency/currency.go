// Package currency converts base-currency amounts into display currencies and
// formats them for the guest's locale.
package currency

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/tourbook/internal/domain"
)

//go:embed rates.yaml
var defaultRates []byte

type ratesFile struct {
	Base  string             `yaml:"base"`
	Rates map[string]float64 `yaml:"rates"`
}

// Converter holds a fixed table of display rates. It is safe for concurrent use.
type Converter struct {
	base    string
	rates   map[string]float64
	printer *message.Printer
}

// New builds a Converter for base from rates expressed as units of each
// currency per one unit of base. Every code must be a known ISO 4217 code.
func New(base string, rates map[string]float64) (*Converter, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if _, err := currency.ParseISO(base); err != nil {
		return nil, fmt.Errorf("currency.New: base %q: %w", base, domain.ErrValidation)
	}

	c := &Converter{
		base:    base,
		rates:   make(map[string]float64, len(rates)+1),
		printer: message.NewPrinter(language.English),
	}
	for code, rate := range rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		if _, err := currency.ParseISO(code); err != nil {
			return nil, fmt.Errorf("currency.New: code %q: %w", code, domain.ErrValidation)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("currency.New: rate for %s must be positive: %w", code, domain.ErrValidation)
		}
		c.rates[code] = rate
	}
	c.rates[base] = 1
	return c, nil
}

// Load reads a rates table in YAML form.
func Load(r io.Reader) (*Converter, error) {
	var f ratesFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("currency.Load: %w", err)
	}
	return New(f.Base, f.Rates)
}

// LoadFile reads a rates table from path.
func LoadFile(path string) (*Converter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("currency.LoadFile: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the Converter built from the embedded rates table, rebased
// onto base when base differs from the table's own base.
func Default(base string) (*Converter, error) {
	var f ratesFile
	if err := yaml.Unmarshal(defaultRates, &f); err != nil {
		return nil, fmt.Errorf("currency.Default: %w", err)
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" || base == f.Base {
		return New(f.Base, f.Rates)
	}
	pivot, ok := f.Rates[base]
	if !ok {
		return nil, fmt.Errorf("currency.Default: no rate for base %q: %w", base, domain.ErrValidation)
	}
	rebased := make(map[string]float64, len(f.Rates))
	for code, rate := range f.Rates {
		rebased[code] = rate / pivot
	}
	return New(base, rebased)
}

// Base returns the base currency code.
func (c *Converter) Base() string { return c.base }

// Currencies returns the supported display codes in sorted order.
func (c *Converter) Currencies() []string {
	return slices.Sorted(maps.Keys(c.rates))
}

// Convert returns amount, given in the base currency, expressed in code.
func (c *Converter) Convert(amount float64, code string) (float64, error) {
	rate, ok := c.rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, fmt.Errorf("currency.Converter.Convert: unsupported currency %q: %w", code, domain.ErrValidation)
	}
	return amount * rate, nil
}

// Format converts amount and renders it with the currency's symbol and its
// standard number of decimals, e.g. "$1,465.00" or "¥219,018".
// An empty code formats in the base currency.
func (c *Converter) Format(amount float64, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		code = c.base
	}
	converted, err := c.Convert(amount, code)
	if err != nil {
		return "", err
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("currency.Converter.Format: %w", domain.ErrValidation)
	}

	scale, _ := currency.Standard.Rounding(unit)
	symbol := c.printer.Sprint(currency.Symbol(unit))
	digits := c.printer.Sprint(number.Decimal(converted, number.Scale(scale)))

	// Letter symbols such as "CHF" read better separated from the digits.
	if r := []rune(symbol); len(r) > 0 && unicode.IsLetter(r[len(r)-1]) {
		symbol += " "
	}
	return symbol + digits, nil
}

// Formatter returns a function that formats base-currency amounts in code.
func (c *Converter) Formatter(code string) (func(float64) string, error) {
	if _, err := c.Format(0, code); err != nil {
		return nil, err
	}
	return func(amount float64) string {
		s, _ := c.Format(amount, code)
		return s
	}, nil
}
