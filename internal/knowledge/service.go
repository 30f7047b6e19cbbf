// Package knowledge defines the knowledge base service contract and the JSON
// wire protocol shared by its transports.
//
// The protocol mirrors the planning knowledge base's service set: one method
// per service name (update_knowledge_base, get_current_instances, ...), each
// taking a JSON request object and returning a JSON response object. The
// httpapi package carries it as POST {prefix}/{method}; the wsapi package as
// request/response frames over a single websocket.
package knowledge

import (
	"context"
	"errors"

	"github.com/scrypster/kbbridge/pkg/types"
)

// ErrUpdateRejected is returned when the service answers an update request
// with a negative acknowledgement.
var ErrUpdateRejected = errors.New("knowledge base rejected update")

// ErrUnknownMethod is returned for requests naming a method the service does not provide.
var ErrUnknownMethod = errors.New("unknown knowledge base method")

// Service is the knowledge base service gateway.
type Service interface {
	// UpdateKnowledgeBase applies op to item. A negative acknowledgement is
	// reported as ErrUpdateRejected.
	UpdateKnowledgeBase(ctx context.Context, op types.UpdateOp, item types.KnowledgeItem) error

	// GetCurrentInstances lists instance names, optionally restricted to one type ("" for all).
	GetCurrentInstances(ctx context.Context, typeName string) ([]string, error)

	// GetCurrentKnowledge lists facts, optionally restricted to one predicate name ("" for all).
	GetCurrentKnowledge(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error)

	// GetCurrentGoals lists goals, optionally restricted to one predicate name ("" for all).
	GetCurrentGoals(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error)

	// GetDomainPredicates returns every predicate declared by the domain.
	GetDomainPredicates(ctx context.Context) ([]types.DomainPredicate, error)

	// GetDomainTypes returns every type declared by the domain, in declaration order.
	GetDomainTypes(ctx context.Context) ([]string, error)

	// GetDomainOperators returns every operator declared by the domain.
	GetDomainOperators(ctx context.Context) ([]types.DomainOperator, error)

	// QueryKnowledgeBase reports, for each item, whether it currently holds.
	QueryKnowledgeBase(ctx context.Context, items []types.KnowledgeItem) (types.QueryResult, error)

	// ClearKnowledgeBase removes all instances, facts and goals.
	ClearKnowledgeBase(ctx context.Context) error
}
