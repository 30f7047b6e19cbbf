// Package memory provides an in-process knowledge base that implements
// knowledge.Service. It backs the transport handlers and is used wherever a
// real planning knowledge base is not available.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/pkg/types"
)

// KnowledgeBase is a concurrency-safe in-memory knowledge base.
type KnowledgeBase struct {
	mu        sync.RWMutex
	domain    Domain
	instances map[string][]string // type -> names, insertion order
	typeOrder []string            // types in first-seen order, for unfiltered listings
	facts     []types.KnowledgeItem
	goals     []types.KnowledgeItem
}

var _ knowledge.Service = (*KnowledgeBase)(nil)

// New creates an empty knowledge base over domain.
func New(domain Domain) *KnowledgeBase {
	kb := &KnowledgeBase{domain: domain}
	kb.reset()
	return kb
}

func (kb *KnowledgeBase) reset() {
	kb.instances = make(map[string][]string)
	kb.typeOrder = append([]string(nil), kb.domain.Types...)
	kb.facts = nil
	kb.goals = nil
}

// UpdateKnowledgeBase applies op to item.
//
// Adding a negative fact removes the matching positive fact. Facts must name
// a declared predicate and use only its parameter names as keys; instances
// must be of a declared type. Violations are reported as ErrUpdateRejected.
func (kb *KnowledgeBase) UpdateKnowledgeBase(ctx context.Context, op types.UpdateOp, item types.KnowledgeItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", knowledge.ErrUpdateRejected, err)
	}
	if !op.IsValid() {
		return fmt.Errorf("%w: unknown update type %d", knowledge.ErrUpdateRejected, int(op))
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if item.Kind == types.KindInstance {
		switch op {
		case types.OpAddKnowledge:
			return kb.addInstance(item.InstanceType, item.InstanceName)
		case types.OpRemoveKnowledge:
			kb.removeInstance(item.InstanceType, item.InstanceName)
			return nil
		default:
			return fmt.Errorf("%w: instances cannot be goals", knowledge.ErrUpdateRejected)
		}
	}

	if err := kb.checkAttributes(item); err != nil {
		return err
	}

	switch op {
	case types.OpAddKnowledge:
		if item.Kind == types.KindFact && item.IsNegative {
			positive := item
			positive.IsNegative = false
			kb.facts = removeMatching(kb.facts, positive)
			return nil
		}
		kb.facts = upsert(kb.facts, item)
	case types.OpRemoveKnowledge:
		kb.facts = removeMatching(kb.facts, item)
	case types.OpAddGoal:
		kb.goals = upsert(kb.goals, item)
	case types.OpRemoveGoal:
		kb.goals = removeMatching(kb.goals, item)
	}
	return nil
}

func (kb *KnowledgeBase) addInstance(typeName, name string) error {
	if !kb.domain.hasType(typeName) {
		return fmt.Errorf("%w: undeclared type %q", knowledge.ErrUpdateRejected, typeName)
	}
	if _, ok := kb.instances[typeName]; !ok && !contains(kb.typeOrder, typeName) {
		kb.typeOrder = append(kb.typeOrder, typeName)
	}
	if contains(kb.instances[typeName], name) {
		return nil
	}
	kb.instances[typeName] = append(kb.instances[typeName], name)
	return nil
}

// removeInstance drops the instance and every fact and goal that mentions it.
// An empty typeName removes the name from every type.
func (kb *KnowledgeBase) removeInstance(typeName, name string) {
	for t, names := range kb.instances {
		if typeName != "" && t != typeName {
			continue
		}
		kb.instances[t] = without(names, name)
	}

	mentions := func(item types.KnowledgeItem) bool {
		for _, kv := range item.Values {
			if kv.Value == name {
				return true
			}
		}
		return false
	}
	kb.facts = filter(kb.facts, mentions)
	kb.goals = filter(kb.goals, mentions)
}

func (kb *KnowledgeBase) checkAttributes(item types.KnowledgeItem) error {
	if len(kb.domain.Predicates) == 0 {
		return nil
	}
	pred, ok := kb.domain.predicate(item.AttributeName)
	if !ok {
		if item.Kind == types.KindFunction {
			return nil
		}
		return fmt.Errorf("%w: undeclared predicate %q", knowledge.ErrUpdateRejected, item.AttributeName)
	}
	for _, kv := range item.Values {
		if _, ok := pred.ParameterType(kv.Key); !ok {
			return fmt.Errorf("%w: predicate %q has no parameter %q",
				knowledge.ErrUpdateRejected, item.AttributeName, kv.Key)
		}
	}
	return nil
}

// GetCurrentInstances lists instance names, all types when typeName is empty.
func (kb *KnowledgeBase) GetCurrentInstances(ctx context.Context, typeName string) ([]string, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if typeName != "" {
		return append([]string{}, kb.instances[typeName]...), nil
	}
	names := []string{}
	for _, t := range kb.typeOrder {
		names = append(names, kb.instances[t]...)
	}
	return names, nil
}

// GetCurrentKnowledge lists facts, filtered by predicate name when non-empty.
func (kb *KnowledgeBase) GetCurrentKnowledge(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return byName(kb.facts, predicateName), nil
}

// GetCurrentGoals lists goals, filtered by predicate name when non-empty.
func (kb *KnowledgeBase) GetCurrentGoals(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return byName(kb.goals, predicateName), nil
}

// GetDomainPredicates returns the declared predicates.
func (kb *KnowledgeBase) GetDomainPredicates(ctx context.Context) ([]types.DomainPredicate, error) {
	out := make([]types.DomainPredicate, len(kb.domain.Predicates))
	copy(out, kb.domain.Predicates)
	return out, nil
}

// GetDomainTypes returns the declared types.
func (kb *KnowledgeBase) GetDomainTypes(ctx context.Context) ([]string, error) {
	return append([]string{}, kb.domain.Types...), nil
}

// GetDomainOperators returns the declared operators.
func (kb *KnowledgeBase) GetDomainOperators(ctx context.Context) ([]types.DomainOperator, error) {
	out := make([]types.DomainOperator, len(kb.domain.Operators))
	copy(out, kb.domain.Operators)
	return out, nil
}

// QueryKnowledgeBase reports whether each item holds. A negative fact holds
// when its positive form is absent.
func (kb *KnowledgeBase) QueryKnowledgeBase(ctx context.Context, items []types.KnowledgeItem) (types.QueryResult, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	result := types.QueryResult{AllTrue: true, Results: make([]bool, 0, len(items))}
	for _, item := range items {
		var holds bool
		switch item.Kind {
		case types.KindInstance:
			holds = contains(kb.instances[item.InstanceType], item.InstanceName)
		case types.KindFunction:
			for _, f := range kb.facts {
				if matches(f, item) && f.FunctionValue == item.FunctionValue {
					holds = true
					break
				}
			}
		default:
			positive := item
			positive.IsNegative = false
			present := false
			for _, f := range kb.facts {
				if matches(f, positive) {
					present = true
					break
				}
			}
			holds = present != item.IsNegative
		}
		result.Results = append(result.Results, holds)
		result.AllTrue = result.AllTrue && holds
	}
	return result, nil
}

// ClearKnowledgeBase removes all instances, facts and goals.
func (kb *KnowledgeBase) ClearKnowledgeBase(ctx context.Context) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.reset()
	return nil
}

// matches compares two items by kind, name, polarity and key/value set.
// Attribute order is irrelevant.
func matches(a, b types.KnowledgeItem) bool {
	if a.Kind != b.Kind || a.AttributeName != b.AttributeName || a.IsNegative != b.IsNegative {
		return false
	}
	if len(a.Values) != len(b.Values) {
		return false
	}
	for _, kv := range a.Values {
		v, ok := b.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func upsert(items []types.KnowledgeItem, item types.KnowledgeItem) []types.KnowledgeItem {
	item = cloneItem(item)
	for i := range items {
		if matches(items[i], item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func removeMatching(items []types.KnowledgeItem, item types.KnowledgeItem) []types.KnowledgeItem {
	return filter(items, func(f types.KnowledgeItem) bool { return matches(f, item) })
}

// filter returns items without the ones drop selects.
func filter(items []types.KnowledgeItem, drop func(types.KnowledgeItem) bool) []types.KnowledgeItem {
	out := items[:0]
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}

func byName(items []types.KnowledgeItem, name string) []types.KnowledgeItem {
	out := []types.KnowledgeItem{}
	for _, it := range items {
		if name == "" || it.AttributeName == name {
			out = append(out, cloneItem(it))
		}
	}
	return out
}

func cloneItem(item types.KnowledgeItem) types.KnowledgeItem {
	item.Values = append([]types.KeyValue{}, item.Values...)
	return item
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func without(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
