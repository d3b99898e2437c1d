// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"embed"
	"html/template"
	"net/http"

	combanana "github.com/fmind/combanana"
	"github.com/fmind/combanana/pkg/logging"
)

// Examples are the clickable intent suggestions shown under the instructions
// box.
var Examples = []string{
	"Place the sport item in an action shot with a cheering crowd.",
	"Show the sport item on a field, then in a stadium, then in a store.",
	"Create a flat-lay composition with the product and related accessories.",
	"Place the person in the picture on a beach, then underwater, then on a boat.",
	"Generate a before-and-after comparison of the person using the fitness product.",
	"Generate a lifestyle image: show a person using the product in a natural setting.",
	"Generate different angles of the product at each step: front, back, and side views.",
	"Create a social media ad: place the item in a stunning landscape, add a catchy slogan",
	"Isolate a collection of products, arrange them for a website banner, and add a title.",
	"Isolate the product, then create a diagram showing an exploded view of its components.",
}

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// indexData feeds the single-page template.
type indexData struct {
	Title       string
	Description string
	Version     string
	Examples    []string

	// Workflow is the session's current workflow as indented JSON, seeding
	// the editable pane.
	Workflow string
}

// handleIndex renders the single-page UI with the session's current workflow.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ses, err := s.ensureSession(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	workflowJSON, err := ses.Workflow.JSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{
		Title:       combanana.Title,
		Description: combanana.Description,
		Version:     combanana.Version,
		Examples:    Examples,
		Workflow:    workflowJSON,
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "render index failed", "error", err)
	}
}
