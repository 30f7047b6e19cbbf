package kbi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kbbridge/pkg/kbi"
	"github.com/scrypster/kbbridge/pkg/types"
)

func TestPredicates_AddListRemove(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddPredicate(ctx, kbi.F("visited", types.KV("wp", "p1"))))
	prebuilt := types.KnowledgeItem{
		Kind:          types.KindFact,
		AttributeName: "robot_at",
		Values:        []types.KeyValue{types.KV("v", "kenny"), types.KV("wp", "p1")},
	}
	require.NoError(t, c.AddPredicate(ctx, prebuilt))

	facts, err := c.ListPredicates(ctx)
	require.NoError(t, err)
	want := []types.KnowledgeItem{kbi.BuildFact("visited", types.KV("wp", "p1")), prebuilt}
	if diff := cmp.Diff(want, facts); diff != "" {
		t.Errorf("ListPredicates() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, c.RemovePredicate(ctx, kbi.F("robot_at", types.KV("wp", "p1"), types.KV("v", "kenny"))))
	facts, err = c.ListPredicates(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "visited", facts[0].AttributeName)
}

func TestPredicates_NegatedAddRetracts(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddPredicate(ctx, kbi.F("visited", types.KV("wp", "p1"))))
	require.NoError(t, c.AddPredicate(ctx, kbi.F("not visited", types.KV("wp", "p1"))))

	facts, err := c.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)

	res, err := c.Query(ctx, kbi.F("! visited", types.KV("wp", "p1")))
	require.NoError(t, err)
	assert.True(t, res.AllTrue)
}

func TestGoals_AddRemoveClear(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddGoal(ctx, kbi.F("visited", types.KV("wp", "p1"))))
	require.NoError(t, c.AddGoal(ctx, kbi.F("visited", types.KV("wp", "p2"))))
	require.NoError(t, c.AddGoal(ctx, kbi.F("handempty")))

	goals, err := c.ListGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, goals, 3)

	require.NoError(t, c.RemoveGoal(ctx, kbi.F("handempty")))
	goals, err = c.ListGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, goals, 2)

	require.NoError(t, c.ClearGoals(ctx))
	goals, err = c.ListGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, goals)

	facts, err := c.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts, "goals never become facts")
}

func TestClearPredicates_KeepsGoalsAndInstances(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddInstance(ctx, "waypoint", "p1", nil))
	require.NoError(t, c.AddPredicate(ctx, kbi.F("visited", types.KV("wp", "p1"))))
	require.NoError(t, c.AddPredicate(ctx, kbi.F("handempty")))
	require.NoError(t, c.AddGoal(ctx, kbi.F("visited", types.KV("wp", "p2"))))

	require.NoError(t, c.ClearPredicates(ctx))

	facts, err := c.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)
	goals, err := c.ListGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, goals, 1)
	names, err := c.ListInstances(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, names)
}

// TestClearPredicates_StopsAtFirstFailure verifies clearing is not
// transactional: items before the failure are gone, the rest remain.
func TestClearPredicates_StopsAtFirstFailure(t *testing.T) {
	items := []types.KnowledgeItem{
		kbi.BuildFact("visited", types.KV("wp", "p1")),
		kbi.BuildFact("visited", types.KV("wp", "p2")),
		kbi.BuildFact("visited", types.KV("wp", "p3")),
	}
	svc := new(mockService)
	svc.On("GetCurrentKnowledge", "").Return(items, nil)
	svc.On("UpdateKnowledgeBase", types.OpRemoveKnowledge, items[0]).Return(nil).Once()
	svc.On("UpdateKnowledgeBase", types.OpRemoveKnowledge, items[1]).Return(errors.New("timeout")).Once()

	err := kbi.New(svc, new(mockStore)).ClearPredicates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	svc.AssertNumberOfCalls(t, "UpdateKnowledgeBase", 2)
}

func TestClearGoals_StopsAtFirstFailure(t *testing.T) {
	goals := []types.KnowledgeItem{
		kbi.BuildFact("visited", types.KV("wp", "p1")),
		kbi.BuildFact("visited", types.KV("wp", "p2")),
		kbi.BuildFact("handempty"),
	}
	svc := new(mockService)
	svc.On("GetCurrentGoals", "").Return(goals, nil)
	svc.On("UpdateKnowledgeBase", types.OpRemoveGoal, goals[0]).Return(nil).Once()
	svc.On("UpdateKnowledgeBase", types.OpRemoveGoal, goals[1]).Return(errors.New("timeout")).Once()

	err := kbi.New(svc, new(mockStore)).ClearGoals(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	svc.AssertNumberOfCalls(t, "UpdateKnowledgeBase", 2)
	svc.AssertNotCalled(t, "UpdateKnowledgeBase", types.OpRemoveGoal, goals[2])
}

func TestClearAll(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddInstance(ctx, "waypoint", "p1", Waypoint{Label: "dock"}))
	require.NoError(t, c.AddInstance(ctx, "robot", "kenny", nil))
	require.NoError(t, c.AddPredicate(ctx, kbi.F("robot_at", types.KV("v", "kenny"), types.KV("wp", "p1"))))
	require.NoError(t, c.AddGoal(ctx, kbi.F("visited", types.KV("wp", "p1"))))

	require.NoError(t, c.ClearAll(ctx))

	names, err := c.ListInstances(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
	facts, err := c.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)
	goals, err := c.ListGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestClearAll_SingleCall(t *testing.T) {
	svc := new(mockService)
	svc.On("ClearKnowledgeBase").Return(nil).Once()

	require.NoError(t, kbi.New(svc, new(mockStore)).ClearAll(context.Background()))
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "UpdateKnowledgeBase", mock.Anything, mock.Anything)
}

func TestUpdate_ErrorsPropagate(t *testing.T) {
	cause := errors.New("service unavailable")
	svc := new(mockService)
	svc.On("UpdateKnowledgeBase", types.OpAddGoal, mock.Anything).Return(cause)

	err := kbi.New(svc, new(mockStore)).AddGoal(context.Background(), kbi.F("handempty"))
	assert.ErrorIs(t, err, cause)
}

func TestDomainListings(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	domainTypes, err := c.ListTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"waypoint", "robot"}, domainTypes)

	ops, err := c.ListOperators(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "goto_waypoint", ops[0].Name)
}

func TestQuery(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddInstance(ctx, "waypoint", "p1", nil))
	require.NoError(t, c.AddPredicate(ctx, kbi.F("visited", types.KV("wp", "p1"))))

	res, err := c.Query(ctx,
		kbi.F("visited", types.KV("wp", "p1")),
		kbi.F("visited", types.KV("wp", "p2")),
		types.NewInstanceItem("waypoint", "p1"),
	)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, res.Results)
	assert.False(t, res.AllTrue)
}
