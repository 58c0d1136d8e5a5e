package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordiae/pipel/internal/store"
)

func TestMemoryStoreVertices(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()

	require.NoError(t, s.AddVertex("source", "source", graph.VertexProperties{}))
	assert.ErrorIs(t, s.AddVertex("source", "source", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	v, _, err := s.Vertex("source")
	require.NoError(t, err)
	assert.Equal(t, "source", v)

	_, _, err = s.Vertex("missing")
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStoreUpdateVertex(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	require.NoError(t, s.AddVertex("transform", "transform", graph.VertexProperties{
		Attributes: map[string]string{},
	}))

	s.UpdateVertex("transform", func(props *graph.VertexProperties) {
		props.Attributes["xlabel"] = "5ms"
		props.Weight = 5
	})

	_, props, err := s.Vertex("transform")
	require.NoError(t, err)
	assert.Equal(t, "5ms", props.Attributes["xlabel"])
	assert.Equal(t, 5, props.Weight)

	// unknown vertices are a no-op
	s.UpdateVertex("missing", func(props *graph.VertexProperties) {
		props.Weight = 1
	})
}

func TestMemoryStoreEdges(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	require.NoError(t, s.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, s.AddVertex("b", "b", graph.VertexProperties{}))

	require.NoError(t, s.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))

	edge, err := s.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", edge.Source)

	_, err = s.Edge("b", "a")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)

	edges, err := s.ListEdges()
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	// vertex with edges cannot be removed
	assert.ErrorIs(t, s.RemoveVertex("a"), graph.ErrVertexHasEdges)

	require.NoError(t, s.RemoveEdge("a", "b"))
	require.NoError(t, s.RemoveVertex("a"))
}
