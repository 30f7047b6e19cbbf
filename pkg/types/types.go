// Package types defines the core data structures exchanged with a planning
// knowledge base: knowledge items (instances, facts, functions), the domain
// schema, and the documents kept in the auxiliary document store.
package types

import "fmt"

// ItemKind identifies what a KnowledgeItem describes.
type ItemKind int

// Knowledge item kind codes, as understood by the knowledge base service.
const (
	// KindInstance is a named object of a declared type.
	KindInstance ItemKind = 0

	// KindFact is a predicate with keyed attributes and a polarity.
	KindFact ItemKind = 1

	// KindFunction is a numeric fluent.
	KindFunction ItemKind = 2
)

// String returns the lowercase kind name.
func (k ItemKind) String() string {
	switch k {
	case KindInstance:
		return "instance"
	case KindFact:
		return "fact"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// UpdateOp is the operation code of a knowledge base update request.
type UpdateOp int

// Update operation codes
const (
	OpAddKnowledge    UpdateOp = 0
	OpAddGoal         UpdateOp = 1
	OpRemoveKnowledge UpdateOp = 2
	OpRemoveGoal      UpdateOp = 3
)

// String returns a readable name for the operation.
func (op UpdateOp) String() string {
	switch op {
	case OpAddKnowledge:
		return "add_knowledge"
	case OpAddGoal:
		return "add_goal"
	case OpRemoveKnowledge:
		return "remove_knowledge"
	case OpRemoveGoal:
		return "remove_goal"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// IsValid reports whether op is one of the four known operation codes.
func (op UpdateOp) IsValid() bool {
	return op >= OpAddKnowledge && op <= OpRemoveGoal
}
