// Package kbi is a client-side facade over a planning knowledge base.
//
// A Client speaks to two backends: a KnowledgeService holding the symbolic
// state (instances, facts, goals and the domain schema) and a DocumentStore
// holding typed payloads for instances. Instances written with a payload are
// dual-written, first to the document store under the key "<type>__<name>"
// and then to the knowledge base. The two writes are not atomic; a failure
// after the first succeeded is reported as a *PartialWriteError.
//
// Predicates and goals may be given either as a name with ordered key/value
// attributes (see F and BuildFact) or as a pre-built types.KnowledgeItem.
// Names may carry a negation prefix ("not ", "NOT " or "! ").
//
// A Client owns its instance registry and predicate cache and is not safe
// for concurrent use.
package kbi
