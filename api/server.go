package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/OpsaAI/OpsaAI/ai"
	"github.com/OpsaAI/OpsaAI/chat"
	"github.com/OpsaAI/OpsaAI/fault"
	"github.com/OpsaAI/OpsaAI/index"
	"github.com/OpsaAI/OpsaAI/ingestion"
)

// Server exposes the HTTP API consumed by the web frontend.
type Server struct {
	router    chi.Router
	ingestion *ingestion.Service
	chat      *chat.Service
	ai        *ai.Service
	index     *index.VectorIndex
	logger    *log.Logger
}

func New(ing *ingestion.Service, chatSvc *chat.Service, aiSvc *ai.Service, ix *index.VectorIndex, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		ingestion: ing,
		chat:      chatSvc,
		ai:        aiSvc,
		index:     ix,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/chat", s.handleChat)
		r.Post("/explain", s.handleExplain)
		r.Post("/visualize", s.handleVisualize)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Get("/status", s.handleStatus)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type uploadResponse struct {
	Success     bool   `json:"success"`
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileSize    int64  `json:"fileSize"`
	ChunksCount int    `json:"chunksCount"`
	Message     string `json:"message"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ingestion.MaxUploadSize); err != nil {
		s.writeError(w, fault.New(fault.Validation, "invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fault.New(fault.Validation, "no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, fmt.Errorf("read uploaded file: %w", err))
		return
	}

	result, err := s.ingestion.Upload(header.Filename, data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Success:     true,
		FileID:      result.DocumentID,
		FileName:    result.FileName,
		FileType:    result.FileType,
		FileSize:    result.FileSize,
		ChunksCount: result.ChunkCount,
		Message:     fmt.Sprintf("File processed successfully. %d chunks created.", result.ChunkCount),
	})
}

type chatRequest struct {
	FileID   string `json:"fileId"`
	Question string `json:"question"`
}

type chatResponse struct {
	Success    bool     `json:"success"`
	Answer     string   `json:"answer"`
	FileName   string   `json:"filename"`
	FileType   string   `json:"fileType"`
	Provider   string   `json:"provider"`
	IsMock     bool     `json:"isMock"`
	Mode       string   `json:"mode"`
	ChunksUsed int      `json:"chunksUsed,omitempty"`
	Previews   []string `json:"previews,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.chat.Ask(r.Context(), req.FileID, req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Success:    true,
		Answer:     result.Answer,
		FileName:   result.FileName,
		FileType:   result.FileType,
		Provider:   result.Provider,
		IsMock:     result.IsMock,
		Mode:       string(result.Mode),
		ChunksUsed: result.ChunksUsed,
		Previews:   result.Previews,
	})
}

type fileRequest struct {
	FileID string `json:"fileId"`
}

type explainRequest struct {
	FileID   string `json:"fileId"`
	FileName string `json:"filename"`
	Content  string `json:"content"`
}

type explainResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis"`
	FileName string `json:"fileName"`
	Provider string `json:"provider"`
	IsMock   bool   `json:"isMock"`
}

// handleExplain analyzes either an already uploaded document by fileId or
// inline content sent with the request.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	content := req.Content
	fileName := req.FileName
	if req.FileID != "" {
		doc, ok := s.index.Document(req.FileID)
		if !ok {
			s.writeError(w, fault.New(fault.NotFound, "file not found: %s", req.FileID))
			return
		}
		content = doc.RawContent
		fileName = doc.FileName
	}
	if content == "" {
		s.writeError(w, fault.New(fault.Validation, "fileId or content is required"))
		return
	}
	if fileName == "" {
		fileName = "uploaded-file"
	}

	resp, err := s.ai.AnalyzeInfrastructure(r.Context(), content, fileName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, explainResponse{
		Success:  true,
		Analysis: resp.Content,
		FileName: fileName,
		Provider: resp.Provider,
		IsMock:   resp.IsMock,
	})
}

type visualizeResponse struct {
	Success  bool        `json:"success"`
	Diagram  *ai.Diagram `json:"diagram"`
	FileName string      `json:"fileName"`
	Provider string      `json:"provider"`
	IsMock   bool        `json:"isMock"`
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.FileID == "" {
		s.writeError(w, fault.New(fault.Validation, "fileId is required"))
		return
	}

	doc, ok := s.index.Document(req.FileID)
	if !ok {
		s.writeError(w, fault.New(fault.NotFound, "file not found: %s", req.FileID))
		return
	}

	resp, err := s.ai.GenerateVisualization(r.Context(), doc.RawContent, doc.FileName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, visualizeResponse{
		Success:  true,
		Diagram:  resp.Diagram,
		FileName: doc.FileName,
		Provider: resp.Provider,
		IsMock:   resp.IsMock,
	})
}

type deleteResponse struct {
	Success       bool   `json:"success"`
	FileID        string `json:"fileId"`
	ChunksRemoved int    `json:"chunksRemoved"`
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.index.Document(id); !ok {
		s.writeError(w, fault.New(fault.NotFound, "file not found: %s", id))
		return
	}

	removed := s.index.DeleteDocument(id)
	s.logger.Printf("deleted document %s (%d chunks)", id, removed)

	s.writeJSON(w, http.StatusOK, deleteResponse{
		Success:       true,
		FileID:        id,
		ChunksRemoved: removed,
	})
}

type statusResponse struct {
	Timestamp   string            `json:"timestamp"`
	VectorIndex vectorIndexStatus `json:"vectorIndex"`
	Provider    providerStatus    `json:"provider"`
}

type vectorIndexStatus struct {
	Status      string `json:"status"`
	TotalChunks int    `json:"totalChunks"`
	Documents   int    `json:"documents"`
}

type providerStatus struct {
	Name   string `json:"name"`
	IsMock bool   `json:"isMock"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.index.Stats()
	s.writeJSON(w, http.StatusOK, statusResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		VectorIndex: vectorIndexStatus{
			Status:      "operational",
			TotalChunks: stats.TotalChunks,
			Documents:   stats.Documents,
		},
		Provider: providerStatus{
			Name:   s.ai.Provider(),
			IsMock: s.ai.IsMock(),
		},
	})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := fault.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fault.New(fault.Validation, "request body is required")
		}
		return fault.New(fault.Validation, "invalid request body: %v", err)
	}
	return nil
}
