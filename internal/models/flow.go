package models

// FlowNode is one node of the pipeline diagram served by the flow endpoint.
type FlowNode struct {
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Kind  string            `json:"kind,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// FlowEdge connects two flow nodes.
type FlowEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// FlowGraph is a static description of the server-side agent pipeline,
// rendered client-side as a node/edge diagram.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}
