package kbi

import "github.com/scrypster/kbbridge/pkg/types"

// ItemSource is anything that yields a knowledge item. Both a pre-built
// types.KnowledgeItem (passed through unchanged) and a Fact implement it.
type ItemSource interface {
	KnowledgeItem() types.KnowledgeItem
}

var (
	_ ItemSource = types.KnowledgeItem{}
	_ ItemSource = Fact{}
)

// Fact is a predicate given by name and ordered attributes.
type Fact struct {
	Name  string
	Attrs []types.KeyValue
}

// F is shorthand for Fact{Name: name, Attrs: attrs}.
func F(name string, attrs ...types.KeyValue) Fact {
	return Fact{Name: name, Attrs: attrs}
}

// KnowledgeItem builds the fact with BuildFact.
func (f Fact) KnowledgeItem() types.KnowledgeItem {
	return BuildFact(f.Name, f.Attrs...)
}

// BuildFact returns a fact item for name with attrs in the order given.
// A negation prefix on name sets IsNegative and is removed from the
// attribute name.
func BuildFact(name string, attrs ...types.KeyValue) types.KnowledgeItem {
	canonical, negative := ParsePredicateName(name)
	values := make([]types.KeyValue, len(attrs))
	copy(values, attrs)
	return types.KnowledgeItem{
		Kind:          types.KindFact,
		AttributeName: canonical,
		Values:        values,
		IsNegative:    negative,
	}
}
