package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/kbbridge/pkg/types"
)

// Domain is the static schema a KnowledgeBase validates updates against.
//
// A domain file looks like:
//
//	types: [waypoint, robot]
//	predicates:
//	  - name: robot_at
//	    parameters:
//	      - {name: v, type: robot}
//	      - {name: wp, type: waypoint}
//	operators:
//	  - name: goto_waypoint
//	    parameters:
//	      - {name: v, type: robot}
//	      - {name: to, type: waypoint}
type Domain struct {
	Types      []string                `yaml:"types"`
	Predicates []types.DomainPredicate `yaml:"predicates"`
	Operators  []types.DomainOperator  `yaml:"operators"`
}

// LoadDomainFile reads a YAML domain file.
func LoadDomainFile(path string) (Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Domain{}, fmt.Errorf("memory: failed to read domain file: %w", err)
	}
	return ParseDomain(data)
}

// ParseDomain decodes and validates a YAML domain.
func ParseDomain(data []byte) (Domain, error) {
	var d Domain
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Domain{}, fmt.Errorf("memory: failed to parse domain: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Domain{}, err
	}
	d.normalize()
	return d, nil
}

// Validate checks for duplicate declarations and parameters of undeclared types.
func (d Domain) Validate() error {
	declared := make(map[string]bool, len(d.Types))
	for _, t := range d.Types {
		if t == "" {
			return fmt.Errorf("memory: domain declares an empty type name")
		}
		if declared[t] {
			return fmt.Errorf("memory: domain declares type %q twice", t)
		}
		declared[t] = true
	}

	check := func(kind, name string, params []types.Parameter) error {
		seen := make(map[string]bool, len(params))
		for _, p := range params {
			if seen[p.Name] {
				return fmt.Errorf("memory: %s %q declares parameter %q twice", kind, name, p.Name)
			}
			seen[p.Name] = true
			if len(declared) > 0 && p.Type != "" && !declared[p.Type] {
				return fmt.Errorf("memory: %s %q parameter %q has undeclared type %q", kind, name, p.Name, p.Type)
			}
		}
		return nil
	}

	predicates := make(map[string]bool, len(d.Predicates))
	for _, p := range d.Predicates {
		if p.Name == "" {
			return fmt.Errorf("memory: domain declares a predicate without a name")
		}
		if predicates[p.Name] {
			return fmt.Errorf("memory: domain declares predicate %q twice", p.Name)
		}
		predicates[p.Name] = true
		if err := check("predicate", p.Name, p.Parameters); err != nil {
			return err
		}
	}
	for _, op := range d.Operators {
		if err := check("operator", op.Name, op.Parameters); err != nil {
			return err
		}
	}
	return nil
}

func (d *Domain) normalize() {
	for i := range d.Predicates {
		if d.Predicates[i].Parameters == nil {
			d.Predicates[i].Parameters = []types.Parameter{}
		}
	}
	for i := range d.Operators {
		if d.Operators[i].Parameters == nil {
			d.Operators[i].Parameters = []types.Parameter{}
		}
	}
}

func (d Domain) hasType(name string) bool {
	if len(d.Types) == 0 {
		return true
	}
	for _, t := range d.Types {
		if t == name {
			return true
		}
	}
	return false
}

func (d Domain) predicate(name string) (types.DomainPredicate, bool) {
	for _, p := range d.Predicates {
		if p.Name == name {
			return p, true
		}
	}
	return types.DomainPredicate{}, false
}
