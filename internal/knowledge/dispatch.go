package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadRequest marks a request body that could not be decoded.
var ErrBadRequest = errors.New("bad request")

// Dispatch decodes params for method, invokes svc, and returns the response
// value to encode. Update requests that the service rejects are answered with
// {"success": false} rather than an error.
func Dispatch(ctx context.Context, svc Service, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodUpdate:
		var req UpdateRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		err := svc.UpdateKnowledgeBase(ctx, req.UpdateType, req.Knowledge)
		if errors.Is(err, ErrUpdateRejected) {
			return UpdateResponse{Success: false}, nil
		}
		if err != nil {
			return nil, err
		}
		return UpdateResponse{Success: true}, nil

	case MethodCurrentInstances:
		var req InstancesRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		names, err := svc.GetCurrentInstances(ctx, req.TypeName)
		if err != nil {
			return nil, err
		}
		return InstancesResponse{Instances: nonNil(names)}, nil

	case MethodCurrentKnowledge, MethodCurrentGoals:
		var req AttributesRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		get := svc.GetCurrentKnowledge
		if method == MethodCurrentGoals {
			get = svc.GetCurrentGoals
		}
		items, err := get(ctx, req.PredicateName)
		if err != nil {
			return nil, err
		}
		return AttributesResponse{Attributes: nonNil(items)}, nil

	case MethodDomainPredicates:
		items, err := svc.GetDomainPredicates(ctx)
		if err != nil {
			return nil, err
		}
		return DomainPredicatesResponse{Items: nonNil(items)}, nil

	case MethodDomainTypes:
		names, err := svc.GetDomainTypes(ctx)
		if err != nil {
			return nil, err
		}
		return DomainTypesResponse{Types: nonNil(names)}, nil

	case MethodDomainOperators:
		ops, err := svc.GetDomainOperators(ctx)
		if err != nil {
			return nil, err
		}
		return DomainOperatorsResponse{Operators: nonNil(ops)}, nil

	case MethodQuery:
		var req QueryRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return svc.QueryKnowledgeBase(ctx, req.Knowledge)

	case MethodClearKnowledgeBase:
		if err := svc.ClearKnowledgeBase(ctx); err != nil {
			return nil, err
		}
		return Empty{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// ErrorCode classifies a Dispatch error for ErrorResponse.Code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownMethod):
		return CodeUnknownMethod
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
