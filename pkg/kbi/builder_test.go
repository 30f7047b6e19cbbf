package kbi_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/scrypster/kbbridge/pkg/kbi"
	"github.com/scrypster/kbbridge/pkg/types"
)

func TestBuildFact(t *testing.T) {
	item := kbi.BuildFact("x", types.KV("a", "1"))

	want := types.KnowledgeItem{
		Kind:          types.KindFact,
		AttributeName: "x",
		Values:        []types.KeyValue{{Key: "a", Value: "1"}},
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Errorf("BuildFact() mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, item.Validate())
}

func TestBuildFact_NegatedAndOrdered(t *testing.T) {
	item := kbi.BuildFact("not robot_at", types.KV("wp", "p1"), types.KV("v", "kenny"))

	assert.Equal(t, "robot_at", item.AttributeName)
	assert.True(t, item.IsNegative)
	assert.Equal(t, []types.KeyValue{types.KV("wp", "p1"), types.KV("v", "kenny")}, item.Values,
		"caller order is kept")
}

func TestBuildFact_NoAttributes(t *testing.T) {
	item := kbi.BuildFact("handempty")
	assert.NotNil(t, item.Values)
	assert.Empty(t, item.Values)
}

func TestBuildFact_CopiesAttributes(t *testing.T) {
	attrs := []types.KeyValue{types.KV("wp", "p1")}
	item := kbi.BuildFact("visited", attrs...)
	attrs[0].Value = "p9"
	assert.Equal(t, "p1", item.Values[0].Value)
}

// TestItemSource_DualMode verifies both accepted forms produce items: a Fact
// is built, a pre-built item passes through unchanged.
func TestItemSource_DualMode(t *testing.T) {
	built := kbi.F("! visited", types.KV("wp", "p1")).KnowledgeItem()
	assert.Equal(t, "visited", built.AttributeName)
	assert.True(t, built.IsNegative)

	prebuilt := types.KnowledgeItem{
		Kind:          types.KindFunction,
		AttributeName: "not distance",
		Values:        []types.KeyValue{types.KV("from", "p1")},
		FunctionValue: 3.5,
	}
	var src kbi.ItemSource = prebuilt
	assert.Equal(t, prebuilt, src.KnowledgeItem(), "pre-built items are not re-parsed")
}
