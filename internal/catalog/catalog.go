// Package catalog reads the problem catalog used to seed a fresh store.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/service"
)

// Catalog is the top level document of a catalog file.
type Catalog struct {
	Problems []Entry `yaml:"problems"`
}

// Entry describes one problem.
type Entry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Difficulty  string   `yaml:"difficulty"`
	Category    string   `yaml:"category"`
	Order       int      `yaml:"order"`
	Description string   `yaml:"description"`
	Examples    []string `yaml:"examples"`
	Constraints []string `yaml:"constraints"`
}

// ParseFile opens and decodes the catalog at path.
func ParseFile(path string, logger *zap.Logger) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open catalog file", zap.Error(err))
		return nil, fmt.Errorf("error opening file %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes and validates a catalog document.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("error decoding catalog %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]struct{}, len(c.Problems))
	for i, p := range c.Problems {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("problem #%d: id required", i+1)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("problem %q: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
		if _, ok := domain.ParseDifficulty(p.Difficulty); !ok {
			return fmt.Errorf("problem %q: unknown difficulty %q", p.ID, p.Difficulty)
		}
		for _, f := range []struct{ name, value string }{
			{"title", p.Title},
			{"category", p.Category},
			{"description", p.Description},
		} {
			if strings.TrimSpace(f.value) == "" {
				return fmt.Errorf("problem %q: %s required", p.ID, f.name)
			}
		}
	}
	return nil
}

// Inputs converts the catalog into problem creation requests.
func (c *Catalog) Inputs() []service.ProblemCreateInput {
	inputs := make([]service.ProblemCreateInput, 0, len(c.Problems))
	for _, p := range c.Problems {
		inputs = append(inputs, service.ProblemCreateInput{
			ID:          p.ID,
			Title:       p.Title,
			Difficulty:  p.Difficulty,
			Category:    p.Category,
			Order:       p.Order,
			Description: p.Description,
			Examples:    p.Examples,
			Constraints: p.Constraints,
		})
	}
	return inputs
}
