package wsapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/internal/knowledge/memory"
	"github.com/scrypster/kbbridge/pkg/types"
)

func dialTestServer(t *testing.T) *Client {
	t.Helper()
	domain, err := memory.ParseDomain([]byte(`
types: [waypoint]
predicates:
  - name: visited
    parameters: [{name: wp, type: waypoint}]
`))
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(memory.New(domain), nil))
	t.Cleanup(srv.Close)

	client, err := Dial(context.Background(), Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDial_RequiresURL(t *testing.T) {
	_, err := Dial(context.Background(), Config{})
	assert.Error(t, err)
}

func TestClient_RoundTrip(t *testing.T) {
	client := dialTestServer(t)
	ctx := context.Background()

	require.NoError(t, client.UpdateKnowledgeBase(ctx, types.OpAddKnowledge, types.NewInstanceItem("waypoint", "p1")))
	visited := types.KnowledgeItem{Kind: types.KindFact, AttributeName: "visited", Values: []types.KeyValue{types.KV("wp", "p1")}}
	require.NoError(t, client.UpdateKnowledgeBase(ctx, types.OpAddGoal, visited))

	names, err := client.GetCurrentInstances(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, names)

	goals, err := client.GetCurrentGoals(ctx, "")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "visited", goals[0].AttributeName)

	require.NoError(t, client.ClearKnowledgeBase(ctx))
	goals, err = client.GetCurrentGoals(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestClient_ServiceErrors(t *testing.T) {
	client := dialTestServer(t)
	ctx := context.Background()

	err := client.UpdateKnowledgeBase(ctx, types.OpAddKnowledge, types.NewInstanceItem("dragon", "smaug"))
	assert.ErrorIs(t, err, knowledge.ErrUpdateRejected)

	err = client.caller.Call(ctx, "plan_everything", knowledge.Empty{}, nil)
	assert.ErrorIs(t, err, knowledge.ErrUnknownMethod)

	// The connection survives error answers.
	domainTypes, err := client.GetDomainTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"waypoint"}, domainTypes)
	assert.Equal(t, "closed", client.BreakerState())
}
