package services

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowCurrent(t *testing.T) {
	svc := NewFlowService(newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flow/current", r.URL.Path)
		io.WriteString(w, `{
			"nodes": [
				{"id": "planner", "label": "Planner", "kind": "agent"},
				{"id": "executor", "label": "Executor", "kind": "agent"}
			],
			"edges": [{"from": "planner", "to": "executor"}]
		}`)
	})))

	graph, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "planner", graph.Nodes[0].ID)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "executor", graph.Edges[0].To)
}
