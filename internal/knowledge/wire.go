package knowledge

import "github.com/scrypster/kbbridge/pkg/types"

// DefaultPrefix is the namespace the knowledge base services live under.
const DefaultPrefix = "/kcl_rosplan"

// Method names, one per knowledge base service.
const (
	MethodUpdate             = "update_knowledge_base"
	MethodCurrentInstances   = "get_current_instances"
	MethodCurrentKnowledge   = "get_current_knowledge"
	MethodCurrentGoals       = "get_current_goals"
	MethodDomainPredicates   = "get_domain_predicates"
	MethodDomainTypes        = "get_domain_types"
	MethodDomainOperators    = "get_domain_operators"
	MethodQuery              = "query_knowledge_base"
	MethodClearKnowledgeBase = "clear_knowledge_base"
)

// Methods lists every method name.
var Methods = []string{
	MethodUpdate,
	MethodCurrentInstances,
	MethodCurrentKnowledge,
	MethodCurrentGoals,
	MethodDomainPredicates,
	MethodDomainTypes,
	MethodDomainOperators,
	MethodQuery,
	MethodClearKnowledgeBase,
}

// UpdateRequest is the body of update_knowledge_base.
type UpdateRequest struct {
	UpdateType types.UpdateOp      `json:"update_type"`
	Knowledge  types.KnowledgeItem `json:"knowledge"`
}

// UpdateResponse acknowledges an update.
type UpdateResponse struct {
	Success bool `json:"success"`
}

// InstancesRequest is the body of get_current_instances.
type InstancesRequest struct {
	TypeName string `json:"type_name"`
}

// InstancesResponse lists instance names.
type InstancesResponse struct {
	Instances []string `json:"instances"`
}

// AttributesRequest is the body of get_current_knowledge and get_current_goals.
type AttributesRequest struct {
	PredicateName string `json:"predicate_name"`
}

// AttributesResponse lists facts or goals.
type AttributesResponse struct {
	Attributes []types.KnowledgeItem `json:"attributes"`
}

// DomainPredicatesResponse lists the domain predicates.
type DomainPredicatesResponse struct {
	Items []types.DomainPredicate `json:"items"`
}

// DomainTypesResponse lists the domain types.
type DomainTypesResponse struct {
	Types []string `json:"types"`
}

// DomainOperatorsResponse lists the domain operators.
type DomainOperatorsResponse struct {
	Operators []types.DomainOperator `json:"operators"`
}

// QueryRequest is the body of query_knowledge_base.
type QueryRequest struct {
	Knowledge []types.KnowledgeItem `json:"knowledge"`
}

// Empty is the body of parameterless requests and acknowledgements.
type Empty struct{}

// ErrorResponse is returned by servers for failed calls.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnknownMethod = "UNKNOWN_METHOD"
	CodeInternal      = "INTERNAL"
)
