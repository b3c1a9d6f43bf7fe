package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagram is the structured visualization payload rendered by the frontend.
type Diagram struct {
	Nodes    []DiagramNode   `json:"nodes"`
	Edges    []DiagramEdge   `json:"edges"`
	Metadata DiagramMetadata `json:"metadata"`
}

type DiagramNode struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Label    string          `json:"label"`
	Data     DiagramNodeData `json:"data"`
	Position Position        `json:"position"`
}

type DiagramNodeData struct {
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Namespace string         `json:"namespace,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type DiagramEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Type   string `json:"type,omitempty"`
}

type DiagramMetadata struct {
	TotalResources int      `json:"totalResources"`
	ResourceTypes  []string `json:"resourceTypes"`
	Namespaces     []string `json:"namespaces"`
}

// extractDiagramJSON pulls the first-to-last brace span out of a model
// response and decodes it. Hosted models wrap JSON in prose more often than
// not.
func extractDiagramJSON(raw string) (*Diagram, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var diagram Diagram
	if err := json.Unmarshal([]byte(raw[start:end+1]), &diagram); err != nil {
		return nil, fmt.Errorf("decode diagram: %w", err)
	}
	if len(diagram.Nodes) == 0 {
		return nil, fmt.Errorf("diagram has no nodes")
	}
	return &diagram, nil
}
