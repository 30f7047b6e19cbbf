package kbi_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/internal/knowledge/httpapi"
	"github.com/scrypster/kbbridge/internal/knowledge/wsapi"
	"github.com/scrypster/kbbridge/pkg/config"
	"github.com/scrypster/kbbridge/pkg/kbi"
	"github.com/scrypster/kbbridge/pkg/types"
)

func testConfig(transport, baseURL string) *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{
			Transport:   transport,
			BaseURL:     baseURL,
			Prefix:      knowledge.DefaultPrefix,
			Timeout:     5 * time.Second,
			Burst:       1,
			MaxFailures: 3,
		},
		Store: config.StoreConfig{Engine: config.EngineSQLite, DSN: ":memory:"},
		Log:   config.LogConfig{Level: "debug"},
	}
}

func exerciseClient(t *testing.T, c *kbi.Client) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, c.AddInstance(ctx, "waypoint", "p1", Waypoint{Label: "dock"}))
	require.NoError(t, c.AddPredicate(ctx, kbi.F("visited", types.KV("wp", "p1"))))

	got, typeName, err := c.GetInstance(ctx, "", "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, Waypoint{Label: "dock"}, got)
	assert.Equal(t, "waypoint", typeName)

	names, found, err := c.PredicateArgNames(ctx, "visited")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"wp"}, names)

	require.NoError(t, c.ClearAll(ctx))
	facts, err := c.ListPredicates(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestOpen_Memory(t *testing.T) {
	domainFile := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(domainFile, []byte(testDomainYAML), 0o600))

	cfg := testConfig(config.TransportMemory, "")
	cfg.Domain.File = domainFile

	c, err := kbi.Open(context.Background(), cfg, kbi.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	exerciseClient(t, c)
	assert.NoError(t, c.Close())
}

func TestOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(httpapi.NewHandler(newMemoryKB(t), "", zaptest.NewLogger(t)))
	defer srv.Close()

	c, err := kbi.Open(context.Background(), testConfig(config.TransportHTTP, srv.URL), kbi.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	exerciseClient(t, c)
	assert.NoError(t, c.Close())
}

func TestOpen_Websocket(t *testing.T) {
	srv := httptest.NewServer(wsapi.NewHandler(newMemoryKB(t), zaptest.NewLogger(t)))
	defer srv.Close()

	c, err := kbi.Open(context.Background(), testConfig(config.TransportWebsocket, "ws"+srv.URL[len("http"):]), kbi.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	exerciseClient(t, c)
	assert.NoError(t, c.Close())
}

func TestOpen_Invalid(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig("smoke-signals", "")
	_, err := kbi.Open(ctx, cfg)
	assert.Error(t, err)

	cfg = testConfig(config.TransportMemory, "")
	cfg.Domain.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = kbi.Open(ctx, cfg, kbi.WithLogger(zaptest.NewLogger(t)))
	assert.Error(t, err)

	cfg = testConfig(config.TransportMemory, "")
	cfg.Log.Level = "chatty"
	_, err = kbi.Open(ctx, cfg)
	assert.Error(t, err)
}
