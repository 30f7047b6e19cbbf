package kbi_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scrypster/kbbridge/internal/knowledge/memory"
	"github.com/scrypster/kbbridge/internal/storage/sqlite"
	"github.com/scrypster/kbbridge/pkg/kbi"
)

const testDomainYAML = `
types: [waypoint, robot]
predicates:
  - name: robot_at
    parameters:
      - {name: v, type: robot}
      - {name: wp, type: waypoint}
  - name: visited
    parameters:
      - {name: wp, type: waypoint}
  - name: handempty
operators:
  - name: goto_waypoint
    parameters:
      - {name: v, type: robot}
      - {name: to, type: waypoint}
`

type Waypoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

type Robot struct {
	Model   string   `json:"model"`
	Sensors []string `json:"sensors"`
}

func (Robot) PayloadTypeName() string { return "robot_info" }

func newMemoryKB(t *testing.T) *memory.KnowledgeBase {
	t.Helper()
	domain, err := memory.ParseDomain([]byte(testDomainYAML))
	require.NoError(t, err)
	return memory.New(domain)
}

func newDocStore(t *testing.T) *sqlite.DocumentStore {
	t.Helper()
	store, err := sqlite.NewDocumentStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newTestClient wires a Client to an in-memory knowledge base and an
// in-memory SQLite document store.
func newTestClient(t *testing.T) *kbi.Client {
	t.Helper()
	c := kbi.New(newMemoryKB(t), newDocStore(t), kbi.WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(func() { _ = c.Close() })
	return c
}
