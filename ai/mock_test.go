package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpsaAI/OpsaAI/ai"
)

const mockDeployYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web-app
  namespace: prod
---
apiVersion: v1
kind: Service
metadata:
  name: web-service
  namespace: prod
`

func TestMockGenerateTextIsDeterministic(t *testing.T) {
	mock := ai.NewMockWithoutLatency()
	ctx := context.Background()

	a, err := mock.GenerateText(ctx, "tell me something", 500)
	require.NoError(t, err)
	b, err := mock.GenerateText(ctx, "tell me something", 500)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestMockGenerateTextRoutesByKeyword(t *testing.T) {
	mock := ai.NewMockWithoutLatency()
	ctx := context.Background()

	security, err := mock.GenerateText(ctx, "what security risks do I have?", 500)
	require.NoError(t, err)
	assert.Contains(t, security, "Security")

	perf, err := mock.GenerateText(ctx, "how can I optimize this?", 500)
	require.NoError(t, err)
	assert.Contains(t, perf, "Performance")
}

func TestMockChatUsesLastMessage(t *testing.T) {
	mock := ai.NewMockWithoutLatency()

	answer, err := mock.Chat(context.Background(), []ai.Message{
		{Role: ai.RoleUser, Content: "ignored earlier message"},
		{Role: ai.RoleUser, Content: "how can I improve performance?"},
	})

	require.NoError(t, err)
	assert.Contains(t, answer, "Performance")
}

func TestMockChatRejectsEmptyHistory(t *testing.T) {
	mock := ai.NewMockWithoutLatency()
	_, err := mock.Chat(context.Background(), nil)
	require.Error(t, err)
}

func TestMockAnalyzeInfrastructure(t *testing.T) {
	mock := ai.NewMockWithoutLatency()

	analysis, err := mock.AnalyzeInfrastructure(context.Background(), mockDeployYAML, "deploy.yaml")
	require.NoError(t, err)

	assert.Contains(t, analysis, "deploy.yaml")
	assert.Contains(t, analysis, "Security Assessment")
	assert.Contains(t, analysis, "Performance Review")
	assert.Contains(t, analysis, "Best Practices Check")
	assert.Contains(t, analysis, "Kubernetes resource definition found")
	assert.Contains(t, analysis, "2 resources defined")
}

func TestMockVisualizationBuildsNodesFromContent(t *testing.T) {
	mock := ai.NewMockWithoutLatency()

	diagram, err := mock.GenerateVisualization(context.Background(), mockDeployYAML, "deploy.yaml")
	require.NoError(t, err)
	require.NotNil(t, diagram)

	require.Len(t, diagram.Nodes, 2)
	assert.Equal(t, "web-app", diagram.Nodes[0].Label)
	assert.Equal(t, "deployment", diagram.Nodes[0].Type)
	assert.Equal(t, "web-service", diagram.Nodes[1].Label)

	require.Len(t, diagram.Edges, 1)
	assert.Equal(t, "exposes", diagram.Edges[0].Label)

	assert.Equal(t, 2, diagram.Metadata.TotalResources)
	assert.Equal(t, []string{"Deployment", "Service"}, diagram.Metadata.ResourceTypes)
	assert.Equal(t, []string{"prod"}, diagram.Metadata.Namespaces)
}

func TestMockVisualizationFallsBackForUnparseableYAML(t *testing.T) {
	mock := ai.NewMockWithoutLatency()

	diagram, err := mock.GenerateVisualization(context.Background(), "just some notes, no resources", "notes.yaml")
	require.NoError(t, err)
	require.NotNil(t, diagram)
	assert.NotEmpty(t, diagram.Nodes)
}

func TestMockCancelledContext(t *testing.T) {
	mock := ai.NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.GenerateText(ctx, "anything", 500)
	assert.ErrorIs(t, err, context.Canceled)
}
