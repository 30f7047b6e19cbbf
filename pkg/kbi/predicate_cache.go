package kbi

import (
	"context"
	"fmt"

	"github.com/scrypster/kbbridge/pkg/types"
)

// PredicateParameters returns the domain definition of the predicate name.
// A negation prefix on name is ignored.
//
// Definitions are cached. A miss fetches the whole predicate listing once,
// caches every entry, then looks again; found is false when the domain has
// no such predicate. A predicate without parameters is found with an empty
// Parameters slice.
func (c *Client) PredicateParameters(ctx context.Context, name string) (types.DomainPredicate, bool, error) {
	name, _ = ParsePredicateName(name)
	if pred, ok := c.predicates[name]; ok {
		return clonePredicate(pred), true, nil
	}

	preds, err := c.svc.GetDomainPredicates(ctx)
	if err != nil {
		return types.DomainPredicate{}, false, fmt.Errorf("kbi: failed to list domain predicates: %w", err)
	}
	for _, pred := range preds {
		c.predicates[pred.Name] = clonePredicate(pred)
	}

	pred, ok := c.predicates[name]
	if !ok {
		return types.DomainPredicate{}, false, nil
	}
	return clonePredicate(pred), true, nil
}

// PredicateArgNames returns the ordered parameter names of a predicate.
func (c *Client) PredicateArgNames(ctx context.Context, name string) ([]string, bool, error) {
	pred, found, err := c.PredicateParameters(ctx, name)
	if err != nil || !found {
		return nil, found, err
	}
	return pred.ParameterNames(), true, nil
}

func clonePredicate(p types.DomainPredicate) types.DomainPredicate {
	p.Parameters = append([]types.Parameter{}, p.Parameters...)
	return p
}
