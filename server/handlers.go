// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/fmind/combanana/artifact"
	"github.com/fmind/combanana/internal/pool"
	"github.com/fmind/combanana/pkg/logging"
	"github.com/fmind/combanana/types"
)

// Error titles shown to the user, one per workflow phase.
const (
	titleDefinitionError = "Workflow Definition Error"
	titleUpdateError     = "Workflow Update Error"
	titleExecutionError  = "Workflow Execution Error"
)

// apiError is the JSON body of every non-2xx API response.
type apiError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// defineRequest is the body of POST /api/workflows.
type defineRequest struct {
	Intent string `json:"intent"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// handleWorkflow returns the session's current workflow as compact JSON, for
// API consumers that want the document rather than the editor pane text.
func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	ses, err := s.ensureSession(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	buf := pool.Buffer.Get()
	buf.Reset()
	defer pool.Buffer.Put(buf)
	if err := ses.Workflow.WriteJSON(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

// handleDefine plans a workflow from free-text intent, amending the session's
// current one, and stores the result.
func (s *Server) handleDefine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ses, err := s.ensureSession(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, titleDefinitionError, err)
		return
	}

	var req defineRequest
	body := http.MaxBytesReader(w, r.Body, maxIntentBytes)
	if err := sonic.ConfigDefault.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, titleDefinitionError, fmt.Errorf("decode request: %w", err))
		return
	}

	workflow, err := s.planner.Define(ctx, req.Intent, ses.Workflow)
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, titleDefinitionError, err)
		return
	}
	if err := s.sessions.UpdateWorkflow(ctx, ses.ID, workflow); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, titleDefinitionError, err)
		return
	}

	s.writeWorkflow(w, r, titleDefinitionError, workflow)
}

// handleUpdate validates a user-edited workflow document and stores it.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ses, err := s.ensureSession(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, titleUpdateError, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkflowBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, titleUpdateError, fmt.Errorf("read request: %w", err))
		return
	}
	workflow, err := types.ParseWorkflow(data)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, titleUpdateError, err)
		return
	}

	if err := s.sessions.UpdateWorkflow(ctx, ses.ID, workflow); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, titleUpdateError, err)
		return
	}

	s.writeWorkflow(w, r, titleUpdateError, workflow)
}

// handleExecute runs the session's workflow against an uploaded image,
// streaming progress and artifact references as Server-Sent Events. The
// stream ends at the first failing step; images already streamed stay
// loadable.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	ses, err := s.ensureSession(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, titleExecutionError, err)
		return
	}

	input, err := readUpload(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, titleExecutionError, err)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, titleExecutionError, err)
		return
	}

	log := newProgressLog(ses.Workflow.Name)
	defer log.release()

	saved := 0
	for event, err := range s.executor.Execute(ctx, ses.Workflow, input) {
		if err != nil {
			logger.WarnContext(ctx, "workflow execution failed", slog.String("error", err.Error()))
			stream.error(titleExecutionError, err)
			return
		}

		switch event.Kind {
		case types.EventWorkflowStarted:
			stream.log(log.text())
		case types.EventStepStarted:
			log.stepStarted(event.Step.Title)
			stream.log(log.text())
		case types.EventModelText:
			log.modelText(event.Text)
			stream.log(log.text())
		case types.EventStepImage:
			saved++
			name := fmt.Sprintf("image-%03d", saved)
			version, err := s.artifacts.Save(ctx, ses.ID, name, event.Image)
			if err != nil {
				logger.ErrorContext(ctx, "artifact save failed", slog.String("error", err.Error()))
				stream.error(titleExecutionError, err)
				return
			}
			stream.image(event.Index, fmt.Sprintf("/api/artifacts/%s?version=%d", name, version))
		case types.EventWorkflowDone:
			log.done()
			stream.log(log.text())
		}
	}

	stream.done()
}

// handleArtifact serves one produced image of the requesting session. The
// version query selects an execution run; without it the latest wins.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ses, err := s.ensureSession(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	version := -1
	if v := r.URL.Query().Get("version"); v != "" {
		version, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid version", http.StatusBadRequest)
			return
		}
	}

	blob, err := s.artifacts.Load(ctx, ses.ID, r.PathValue("name"), version)
	if err != nil {
		if errors.Is(err, artifact.ErrArtifactNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	mimeType := blob.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(blob.Data)
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(blob.Data)
}

// readUpload extracts the uploaded image from the multipart form. The bytes
// pass through untouched; only the MIME type is sniffed when the browser did
// not send one.
func readUpload(w http.ResponseWriter, r *http.Request) (*genai.Blob, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("read image upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read image upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded image is empty")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return &genai.Blob{MIMEType: mimeType, Data: data}, nil
}

// writeWorkflow responds with the workflow as indented JSON, the exact text
// the UI places into the editable workflow pane. Failures carry the calling
// phase's error title.
func (s *Server) writeWorkflow(w http.ResponseWriter, r *http.Request, title string, workflow *types.Workflow) {
	doc, err := workflow.JSON()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, title, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, doc)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, title string, err error) {
	logging.FromContext(r.Context()).WarnContext(r.Context(), "request failed",
		slog.String("title", title),
		slog.String("error", err.Error()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, merr := sonic.ConfigDefault.Marshal(apiError{Title: title, Message: err.Error()})
	if merr != nil {
		return
	}
	w.Write(data)
}
