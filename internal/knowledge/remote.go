package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrypster/kbbridge/pkg/types"
)

// Caller performs one request/response exchange with a remote knowledge base.
// req and resp are JSON-encodable values; resp may be nil to discard the body.
type Caller interface {
	Call(ctx context.Context, method string, req, resp any) error
}

// RemoteError is a failure reported by the remote service itself.
type RemoteError struct {
	Method  string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("knowledge base %s: %s", e.Method, e.Message)
	}
	return fmt.Sprintf("knowledge base %s: %s (%s)", e.Method, e.Message, e.Code)
}

// Is maps CodeUnknownMethod onto ErrUnknownMethod.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnknownMethod && e.Code == CodeUnknownMethod
}

// IsServiceAnswer reports whether err means the remote service answered, as
// opposed to being unreachable. Circuit breakers count only the latter.
func IsServiceAnswer(err error) bool {
	if err == nil || errors.Is(err, ErrUpdateRejected) {
		return true
	}
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Code != CodeInternal
}

// RemoteService implements Service on top of a Caller.
type RemoteService struct {
	caller Caller
}

var _ Service = (*RemoteService)(nil)

// NewRemoteService wraps caller.
func NewRemoteService(caller Caller) *RemoteService {
	return &RemoteService{caller: caller}
}

// UpdateKnowledgeBase sends an update and turns a negative ack into ErrUpdateRejected.
func (s *RemoteService) UpdateKnowledgeBase(ctx context.Context, op types.UpdateOp, item types.KnowledgeItem) error {
	var resp UpdateResponse
	if err := s.caller.Call(ctx, MethodUpdate, UpdateRequest{UpdateType: op, Knowledge: item}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s %s", ErrUpdateRejected, op, item)
	}
	return nil
}

// GetCurrentInstances lists instance names.
func (s *RemoteService) GetCurrentInstances(ctx context.Context, typeName string) ([]string, error) {
	var resp InstancesResponse
	if err := s.caller.Call(ctx, MethodCurrentInstances, InstancesRequest{TypeName: typeName}, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Instances), nil
}

// GetCurrentKnowledge lists facts.
func (s *RemoteService) GetCurrentKnowledge(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error) {
	var resp AttributesResponse
	if err := s.caller.Call(ctx, MethodCurrentKnowledge, AttributesRequest{PredicateName: predicateName}, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Attributes), nil
}

// GetCurrentGoals lists goals.
func (s *RemoteService) GetCurrentGoals(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error) {
	var resp AttributesResponse
	if err := s.caller.Call(ctx, MethodCurrentGoals, AttributesRequest{PredicateName: predicateName}, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Attributes), nil
}

// GetDomainPredicates returns the domain predicates.
func (s *RemoteService) GetDomainPredicates(ctx context.Context) ([]types.DomainPredicate, error) {
	var resp DomainPredicatesResponse
	if err := s.caller.Call(ctx, MethodDomainPredicates, Empty{}, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Items), nil
}

// GetDomainTypes returns the domain types.
func (s *RemoteService) GetDomainTypes(ctx context.Context) ([]string, error) {
	var resp DomainTypesResponse
	if err := s.caller.Call(ctx, MethodDomainTypes, Empty{}, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Types), nil
}

// GetDomainOperators returns the domain operators.
func (s *RemoteService) GetDomainOperators(ctx context.Context) ([]types.DomainOperator, error) {
	var resp DomainOperatorsResponse
	if err := s.caller.Call(ctx, MethodDomainOperators, Empty{}, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Operators), nil
}

// QueryKnowledgeBase asks whether each item holds.
func (s *RemoteService) QueryKnowledgeBase(ctx context.Context, items []types.KnowledgeItem) (types.QueryResult, error) {
	var resp types.QueryResult
	if err := s.caller.Call(ctx, MethodQuery, QueryRequest{Knowledge: items}, &resp); err != nil {
		return types.QueryResult{}, err
	}
	resp.Results = nonNil(resp.Results)
	return resp, nil
}

// ClearKnowledgeBase wipes the knowledge base.
func (s *RemoteService) ClearKnowledgeBase(ctx context.Context) error {
	return s.caller.Call(ctx, MethodClearKnowledgeBase, Empty{}, nil)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
