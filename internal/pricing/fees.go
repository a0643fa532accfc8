package pricing

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

type Rate struct {
	BaseFee  float64 `yaml:"baseFee" json:"baseFee"`
	PerKmFee float64 `yaml:"perKmFee" json:"perKmFee"`
}

// Table maps a delivery mechanism class to its rate.
type Table map[string]Rate

func DefaultTable() Table {
	return Table{
		"cycle-rider":      {BaseFee: 35, PerKmFee: 50},
		"e-bike-rider":     {BaseFee: 40, PerKmFee: 55},
		"motorcycle-rider": {BaseFee: 50, PerKmFee: 60},
	}
}

// LoadTable reads a YAML fee table of the form
//
//	cycle-rider:
//	  baseFee: 35
//	  perKmFee: 50
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fee table: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing fee table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("fee table %s defines no mechanisms", path)
	}

	return table, nil
}

type Calculator struct {
	table Table
}

func NewCalculator(table Table) *Calculator {
	return &Calculator{table: table}
}

// Known reports whether the mechanism has a rate.
func (c *Calculator) Known(mechanism string) bool {
	_, ok := c.table[mechanism]
	return ok
}

// Fee returns baseFee + perKmFee*distanceKm. Unknown mechanisms cost 0, so
// callers check Known before trusting the result.
func (c *Calculator) Fee(mechanism string, distanceKm float64) float64 {
	rate, ok := c.table[mechanism]
	if !ok {
		return 0
	}
	return rate.BaseFee + rate.PerKmFee*distanceKm
}

// BaseFee is the quote for a trip of unknown length.
func (c *Calculator) BaseFee(mechanism string) float64 {
	return c.Fee(mechanism, 0)
}

func (c *Calculator) Mechanisms() []string {
	out := make([]string, 0, len(c.table))
	for m := range c.table {
		out = append(out, m)
	}
	return out
}
