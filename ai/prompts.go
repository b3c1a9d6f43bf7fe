package ai

import "fmt"

const (
	defaultMaxTokens       = 500
	analysisMaxTokens      = 800
	visualizationMaxTokens = 1000
)

func analysisPrompt(content, filename string) string {
	return fmt.Sprintf(`Analyze this %s infrastructure file and provide insights:

%s

Please provide:
1. Security recommendations
2. Performance optimizations
3. Best practices
4. Potential issues

Analysis:`, filename, content)
}

func visualizationPrompt(content, filename string) string {
	return fmt.Sprintf(`Analyze this %s and create a JSON structure for visualization:

%s

Return a JSON object with nodes and edges for infrastructure visualization. Include:
- nodes: array of resources with id, type, label, data, position
- edges: array of relationships with id, source, target, label, type
- metadata: totalResources, resourceTypes, namespaces

Respond ONLY with valid JSON, no additional text.

JSON:`, filename, content)
}
