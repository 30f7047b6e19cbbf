package types

// Parameter is a typed predicate or operator parameter, e.g. {"r", "robot"}.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// DomainPredicate is a predicate declared by the planning domain.
// A predicate with no parameters has an empty, non-nil Parameters slice.
type DomainPredicate struct {
	Name       string      `json:"name" yaml:"name"`
	Parameters []Parameter `json:"typed_parameters" yaml:"parameters"`
}

// ParameterNames returns the parameter names in declaration order.
func (p DomainPredicate) ParameterNames() []string {
	names := make([]string, 0, len(p.Parameters))
	for _, param := range p.Parameters {
		names = append(names, param.Name)
	}
	return names
}

// ParameterType returns the declared type of the named parameter.
func (p DomainPredicate) ParameterType(name string) (string, bool) {
	for _, param := range p.Parameters {
		if param.Name == name {
			return param.Type, true
		}
	}
	return "", false
}

// DomainOperator is an action schema declared by the planning domain.
type DomainOperator struct {
	Name       string      `json:"name" yaml:"name"`
	Parameters []Parameter `json:"typed_parameters" yaml:"parameters"`
}
