package types

import (
	"errors"
	"fmt"
)

// KeyValue is a single attribute of a fact, e.g. {"r", "kenny"} in robot_at(r=kenny).
type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// KV builds a KeyValue.
func KV(key, value string) KeyValue {
	return KeyValue{Key: key, Value: value}
}

// KnowledgeItem is the unit of update and query for the knowledge base.
//
// Instance items carry InstanceType and InstanceName and leave AttributeName
// and Values empty. Fact items carry AttributeName and Values and leave the
// instance fields empty. FunctionValue is only meaningful for KindFunction.
type KnowledgeItem struct {
	Kind          ItemKind   `json:"knowledge_type"`
	InstanceType  string     `json:"instance_type"`
	InstanceName  string     `json:"instance_name"`
	AttributeName string     `json:"attribute_name"`
	Values        []KeyValue `json:"values"`
	FunctionValue float64    `json:"function_value"`
	IsNegative    bool       `json:"is_negative"`
}

// ErrInvalidItem is returned by Validate for items that break the kind invariants.
var ErrInvalidItem = errors.New("invalid knowledge item")

// NewInstanceItem returns the Instance item for (typeName, name).
func NewInstanceItem(typeName, name string) KnowledgeItem {
	return KnowledgeItem{
		Kind:         KindInstance,
		InstanceType: typeName,
		InstanceName: name,
		Values:       []KeyValue{},
	}
}

// KnowledgeItem returns the item itself, so a pre-built item can be passed
// wherever a fact description is accepted.
func (k KnowledgeItem) KnowledgeItem() KnowledgeItem {
	return k
}

// Value returns the value stored under key and whether it was present.
func (k KnowledgeItem) Value(key string) (string, bool) {
	for _, kv := range k.Values {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Validate checks the kind invariants.
func (k KnowledgeItem) Validate() error {
	switch k.Kind {
	case KindInstance:
		if k.InstanceName == "" {
			return fmt.Errorf("%w: instance name is required", ErrInvalidItem)
		}
		if k.AttributeName != "" || len(k.Values) > 0 {
			return fmt.Errorf("%w: instance items carry no attribute", ErrInvalidItem)
		}
	case KindFact, KindFunction:
		if k.AttributeName == "" {
			return fmt.Errorf("%w: attribute name is required for %s items", ErrInvalidItem, k.Kind)
		}
		if k.InstanceType != "" || k.InstanceName != "" {
			return fmt.Errorf("%w: %s items carry no instance", ErrInvalidItem, k.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidItem, int(k.Kind))
	}
	return nil
}

// String renders the item in a compact predicate-like form.
func (k KnowledgeItem) String() string {
	switch k.Kind {
	case KindInstance:
		return fmt.Sprintf("%s - %s", k.InstanceName, k.InstanceType)
	default:
		s := ""
		if k.IsNegative {
			s = "not "
		}
		s += "(" + k.AttributeName
		for _, kv := range k.Values {
			s += fmt.Sprintf(" %s:%s", kv.Key, kv.Value)
		}
		s += ")"
		if k.Kind == KindFunction {
			s += fmt.Sprintf(" = %g", k.FunctionValue)
		}
		return s
	}
}

// QueryResult is the answer to a knowledge base query: one entry per queried
// item, plus whether all of them hold.
type QueryResult struct {
	AllTrue bool   `json:"all_true"`
	Results []bool `json:"results"`
}
