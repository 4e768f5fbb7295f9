package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
)

type funcNode struct {
	name string
	fn   func([]*core.Item) ([]*core.Item, error)
}

func (n *funcNode) Name() string { return n.name }
func (n *funcNode) Kind() Kind   { return KindRank }
func (n *funcNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items)
}

func appendNode(name, id string) *funcNode {
	return &funcNode{name: name, fn: func(items []*core.Item) ([]*core.Item, error) {
		return append(items, core.NewItem(id)), nil
	}}
}

func TestPipeline_RunsNodesInOrder(t *testing.T) {
	p := &Pipeline{Nodes: []Node{appendNode("a", "1"), appendNode("b", "2")}}

	items, err := p.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
}

func TestPipeline_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := &Pipeline{Nodes: []Node{
		&funcNode{name: "fail", fn: func([]*core.Item) ([]*core.Item, error) { return nil, boom }},
		&funcNode{name: "never", fn: func(items []*core.Item) ([]*core.Item, error) {
			called = true
			return items, nil
		}},
	}}

	items, err := p.Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, items)
	assert.False(t, called)
}

func TestConfig_ParseAndBuild(t *testing.T) {
	cfg, err := Parse([]byte(`
pipeline:
  name: test
  nodes:
    - type: append
      config: {id: x}
    - type: append
`))
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Pipeline.Name)
	require.Len(t, cfg.Pipeline.Nodes, 2)

	f := NewNodeFactory()
	f.Register("append", func(c map[string]any) (Node, error) {
		id, _ := c["id"].(string)
		if id == "" {
			id = "default"
		}
		return appendNode("append", id), nil
	})
	p, err := cfg.BuildPipeline(f)
	require.NoError(t, err)

	items, err := p.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "x", items[0].ID)
	assert.Equal(t, "default", items[1].ID)
}

func TestConfig_JSONInput(t *testing.T) {
	cfg, err := Parse([]byte(`{"pipeline": {"name": "j", "nodes": [{"type": "rerank.topn", "config": {"n": 5}}]}}`))
	require.NoError(t, err)
	require.Len(t, cfg.Pipeline.Nodes, 1)
	assert.Equal(t, 5, cfg.Pipeline.Nodes[0].Config["n"])
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  name: file\n"), 0o600))

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Pipeline.Name)

	_, err = LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNodeFactory_Errors(t *testing.T) {
	f := NewNodeFactory()
	f.Register("b", func(map[string]any) (Node, error) { return nil, errors.New("bad config") })
	f.Register("a", func(map[string]any) (Node, error) { return appendNode("a", "1"), nil })
	assert.Equal(t, []string{"a", "b"}, f.Types())

	_, err := f.Build("missing", nil)
	assert.ErrorContains(t, err, "unknown node type")

	cfg := &Config{}
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "a"}, {Type: "b"}}
	_, err = cfg.BuildPipeline(f)
	assert.ErrorContains(t, err, "build node #1 b")

	_, err = cfg.BuildPipeline(nil)
	assert.Error(t, err)
}
