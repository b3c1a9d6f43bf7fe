package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpsaAI/OpsaAI/ai"
	"github.com/OpsaAI/OpsaAI/api"
	"github.com/OpsaAI/OpsaAI/chat"
	"github.com/OpsaAI/OpsaAI/config"
	"github.com/OpsaAI/OpsaAI/embeddings"
	"github.com/OpsaAI/OpsaAI/index"
	"github.com/OpsaAI/OpsaAI/ingestion"
)

const serverYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web-app
spec:
  replicas: 3
`

func newTestServer() *api.Server {
	logger := log.New(io.Discard, "", 0)
	embedder := embeddings.NewHashEmbedder()
	ix := index.New(embedder)
	aiSvc := ai.NewServiceWithProvider(config.ProviderMock, ai.NewMockWithoutLatency(), logger)
	ingestionSvc := ingestion.NewService(ix, logger)
	chatSvc := chat.NewService(ix, embedder, aiSvc, logger)
	return api.New(ingestionSvc, chatSvc, aiSvc, ix, logger)
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadFile(t *testing.T, server *api.Server, filename, content string) string {
	t.Helper()
	body, contentType := multipartUpload(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success     bool   `json:"success"`
		FileID      string `json:"fileId"`
		ChunksCount int    `json:"chunksCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.FileID)
	require.Greater(t, resp.ChunksCount, 0)
	return resp.FileID
}

func postJSON(server *api.Server, path string, payload any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndChatRoundTrip(t *testing.T) {
	server := newTestServer()
	fileID := uploadFile(t, server, "deploy.yaml", serverYAML)

	rec := postJSON(server, "/api/chat", map[string]string{
		"fileId":   fileID,
		"question": "how many replicas are configured?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success    bool     `json:"success"`
		Answer     string   `json:"answer"`
		FileName   string   `json:"filename"`
		Provider   string   `json:"provider"`
		IsMock     bool     `json:"isMock"`
		Mode       string   `json:"mode"`
		ChunksUsed int      `json:"chunksUsed"`
		Previews   []string `json:"previews"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Answer)
	assert.Equal(t, "deploy.yaml", resp.FileName)
	assert.Equal(t, "mock", resp.Provider)
	assert.True(t, resp.IsMock)
	assert.Equal(t, string(chat.ModeGroundedChat), resp.Mode)
	assert.GreaterOrEqual(t, resp.ChunksUsed, 1)
	assert.NotEmpty(t, resp.Previews)
}

func TestChatMetadataMode(t *testing.T) {
	server := newTestServer()
	fileID := uploadFile(t, server, "deploy.yaml", serverYAML)

	rec := postJSON(server, "/api/chat", map[string]string{
		"fileId":   fileID,
		"question": "what is this file?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Mode string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(chat.ModeFileMetadata), resp.Mode)
}

func TestChatUnknownFileReturns404(t *testing.T) {
	server := newTestServer()

	rec := postJSON(server, "/api/chat", map[string]string{
		"fileId":   "nope",
		"question": "how many replicas?",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "file not found")
}

func TestChatMissingBodyReturns400(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(""))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	server := newTestServer()
	body, contentType := multipartUpload(t, "tool.exe", "MZ")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestUploadWithoutFileReturns400(t *testing.T) {
	server := newTestServer()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file provided")
}

func TestExplainEndpoint(t *testing.T) {
	server := newTestServer()
	fileID := uploadFile(t, server, "deploy.yaml", serverYAML)

	rec := postJSON(server, "/api/explain", map[string]string{"fileId": fileID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		Analysis string `json:"analysis"`
		IsMock   bool   `json:"isMock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Analysis, "deploy.yaml")
	assert.True(t, resp.IsMock)
}

func TestExplainAcceptsInlineContent(t *testing.T) {
	server := newTestServer()

	rec := postJSON(server, "/api/explain", map[string]string{
		"filename": "app.yaml",
		"content":  serverYAML,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		Analysis string `json:"analysis"`
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Analysis, "app.yaml")
	assert.Equal(t, "app.yaml", resp.FileName)
}

func TestExplainWithoutFileOrContentReturns400(t *testing.T) {
	server := newTestServer()

	rec := postJSON(server, "/api/explain", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisualizeEndpoint(t *testing.T) {
	server := newTestServer()
	fileID := uploadFile(t, server, "deploy.yaml", serverYAML)

	rec := postJSON(server, "/api/visualize", map[string]string{"fileId": fileID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Diagram struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		} `json:"diagram"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Diagram.Nodes)
}

func TestDeleteDocument(t *testing.T) {
	server := newTestServer()
	fileID := uploadFile(t, server, "deploy.yaml", serverYAML)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/documents/%s", fileID), nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success       bool `json:"success"`
		ChunksRemoved int  `json:"chunksRemoved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.ChunksRemoved, 0)

	// The document is gone; chatting against it now 404s.
	chatRec := postJSON(server, "/api/chat", map[string]string{
		"fileId":   fileID,
		"question": "how many replicas?",
	})
	assert.Equal(t, http.StatusNotFound, chatRec.Code)
}

func TestDeleteUnknownDocumentReturns404(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/missing", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer()
	uploadFile(t, server, "deploy.yaml", serverYAML)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Timestamp   string `json:"timestamp"`
		VectorIndex struct {
			Status      string `json:"status"`
			TotalChunks int    `json:"totalChunks"`
			Documents   int    `json:"documents"`
		} `json:"vectorIndex"`
		Provider struct {
			Name   string `json:"name"`
			IsMock bool   `json:"isMock"`
		} `json:"provider"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, "operational", resp.VectorIndex.Status)
	assert.Greater(t, resp.VectorIndex.TotalChunks, 0)
	assert.Equal(t, 1, resp.VectorIndex.Documents)
	assert.Equal(t, "mock", resp.Provider.Name)
	assert.True(t, resp.Provider.IsMock)
}
