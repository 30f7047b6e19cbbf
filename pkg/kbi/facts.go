package kbi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scrypster/kbbridge/pkg/types"
)

// AddPredicate asserts a fact. A negated fact asserts its absence.
func (c *Client) AddPredicate(ctx context.Context, src ItemSource) error {
	return c.update(ctx, types.OpAddKnowledge, src)
}

// RemovePredicate retracts a fact.
func (c *Client) RemovePredicate(ctx context.Context, src ItemSource) error {
	return c.update(ctx, types.OpRemoveKnowledge, src)
}

// AddGoal registers a goal.
func (c *Client) AddGoal(ctx context.Context, src ItemSource) error {
	return c.update(ctx, types.OpAddGoal, src)
}

// RemoveGoal drops a goal.
func (c *Client) RemoveGoal(ctx context.Context, src ItemSource) error {
	return c.update(ctx, types.OpRemoveGoal, src)
}

func (c *Client) update(ctx context.Context, op types.UpdateOp, src ItemSource) error {
	item := src.KnowledgeItem()
	if err := c.svc.UpdateKnowledgeBase(ctx, op, item); err != nil {
		return fmt.Errorf("kbi: %s %s: %w", op, item, err)
	}
	c.logger.Debug("knowledge base updated", zap.Stringer("op", op), zap.Stringer("item", item))
	return nil
}

// ListPredicates returns every current fact.
func (c *Client) ListPredicates(ctx context.Context) ([]types.KnowledgeItem, error) {
	items, err := c.svc.GetCurrentKnowledge(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("kbi: failed to list facts: %w", err)
	}
	return items, nil
}

// ListGoals returns every current goal.
func (c *Client) ListGoals(ctx context.Context) ([]types.KnowledgeItem, error) {
	items, err := c.svc.GetCurrentGoals(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("kbi: failed to list goals: %w", err)
	}
	return items, nil
}

// ClearPredicates removes the current facts one at a time. It stops at the
// first failure, leaving the rest in place.
func (c *Client) ClearPredicates(ctx context.Context) error {
	items, err := c.ListPredicates(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := c.RemovePredicate(ctx, item); err != nil {
			return err
		}
	}
	c.logger.Debug("cleared facts", zap.Int("count", len(items)))
	return nil
}

// ClearGoals removes the current goals one at a time. It stops at the first
// failure, leaving the rest in place.
func (c *Client) ClearGoals(ctx context.Context) error {
	items, err := c.ListGoals(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := c.RemoveGoal(ctx, item); err != nil {
			return err
		}
	}
	c.logger.Debug("cleared goals", zap.Int("count", len(items)))
	return nil
}

// ClearAll wipes instances, facts and goals with one knowledge base call.
// Stored payloads and the payload registry are kept.
func (c *Client) ClearAll(ctx context.Context) error {
	if err := c.svc.ClearKnowledgeBase(ctx); err != nil {
		return fmt.Errorf("kbi: failed to clear knowledge base: %w", err)
	}
	c.logger.Debug("cleared knowledge base")
	return nil
}

// Query reports whether each item currently holds.
func (c *Client) Query(ctx context.Context, srcs ...ItemSource) (types.QueryResult, error) {
	items := make([]types.KnowledgeItem, 0, len(srcs))
	for _, src := range srcs {
		items = append(items, src.KnowledgeItem())
	}
	res, err := c.svc.QueryKnowledgeBase(ctx, items)
	if err != nil {
		return types.QueryResult{}, fmt.Errorf("kbi: failed to query knowledge base: %w", err)
	}
	return res, nil
}

// ListTypes returns the domain's instance types.
func (c *Client) ListTypes(ctx context.Context) ([]string, error) {
	names, err := c.svc.GetDomainTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("kbi: failed to list domain types: %w", err)
	}
	return names, nil
}

// ListOperators returns the domain's operators.
func (c *Client) ListOperators(ctx context.Context) ([]types.DomainOperator, error) {
	ops, err := c.svc.GetDomainOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("kbi: failed to list domain operators: %w", err)
	}
	return ops, nil
}
