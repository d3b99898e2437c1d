// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/fmind/combanana/artifact"
	"github.com/fmind/combanana/server"
	"github.com/fmind/combanana/session"
	"github.com/fmind/combanana/types"
)

// stubPlanner returns a canned workflow (or error) and records the intent and
// current workflow it was called with.
type stubPlanner struct {
	workflow *types.Workflow
	err      error

	gotIntent  string
	gotCurrent *types.Workflow
}

var _ types.Planner = (*stubPlanner)(nil)

func (p *stubPlanner) Define(ctx context.Context, intent string, current *types.Workflow) (*types.Workflow, error) {
	p.gotIntent = intent
	p.gotCurrent = current
	if p.err != nil {
		return nil, p.err
	}
	return p.workflow, nil
}

// stubExecutor replays a scripted event sequence, optionally ending with an
// error, and records the workflow and input it received.
type stubExecutor struct {
	events []*types.ExecutionEvent
	err    error

	gotWorkflow *types.Workflow
	gotInput    *genai.Blob
}

var _ types.Executor = (*stubExecutor)(nil)

func (e *stubExecutor) Execute(ctx context.Context, workflow *types.Workflow, input *genai.Blob) iter.Seq2[*types.ExecutionEvent, error] {
	e.gotWorkflow = workflow
	e.gotInput = input
	return func(yield func(*types.ExecutionEvent, error) bool) {
		for _, event := range e.events {
			if !yield(event, nil) {
				return
			}
		}
		if e.err != nil {
			yield(nil, e.err)
		}
	}
}

// testClient wraps an httptest server with a cookie jar so requests share the
// session cookie like a browser would.
func testClient(t *testing.T, planner types.Planner, executor types.Executor) (*httptest.Server, *http.Client) {
	t.Helper()

	s := server.New(planner, executor, session.NewInMemoryService(time.Hour), artifact.NewInMemoryService())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func sampleWorkflow() *types.Workflow {
	return &types.Workflow{
		Name: "Rotate and Grayscale",
		Steps: []types.Step{
			{Title: "Rotate", Prompt: "rotate the image 90 degrees"},
			{Title: "Grayscale", Prompt: "convert the image to grayscale"},
		},
	}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := sonic.ConfigDefault.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestHealthz(t *testing.T) {
	ts, client := testClient(t, &stubPlanner{}, &stubExecutor{})

	resp, err := client.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "ok\n" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestIndex(t *testing.T) {
	ts, client := testClient(t, &stubPlanner{}, &stubExecutor{})

	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Combo-Banana") {
		t.Error("expected page title in body")
	}
	if !strings.Contains(body, types.DefaultWorkflowName) {
		t.Error("expected the empty workflow seed in the editor pane")
	}
	if !strings.Contains(body, server.Examples[0]) {
		t.Error("expected intent examples in the page")
	}
}

func TestDefine(t *testing.T) {
	planner := &stubPlanner{workflow: sampleWorkflow()}
	ts, client := testClient(t, planner, &stubExecutor{})

	resp := postJSON(t, client, ts.URL+"/api/workflows", map[string]string{
		"intent": "rotate 90 degrees, then convert to grayscale",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got, err := types.ParseWorkflow([]byte(readBody(t, resp)))
	if err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if diff := cmp.Diff(sampleWorkflow(), got); diff != "" {
		t.Errorf("workflow mismatch (-want +got):\n%s", diff)
	}

	if planner.gotIntent != "rotate 90 degrees, then convert to grayscale" {
		t.Errorf("unexpected intent: %q", planner.gotIntent)
	}
	// A fresh session plans against the empty seed workflow.
	if planner.gotCurrent == nil || planner.gotCurrent.Name != types.DefaultWorkflowName {
		t.Errorf("expected the empty seed as current workflow, got %+v", planner.gotCurrent)
	}

	// The follow-up request amends the stored workflow, not the seed.
	resp = postJSON(t, client, ts.URL+"/api/workflows", map[string]string{
		"intent": "also add a sepia tone",
	})
	readBody(t, resp)
	if diff := cmp.Diff(sampleWorkflow(), planner.gotCurrent); diff != "" {
		t.Errorf("expected second define to amend the stored workflow (-want +got):\n%s", diff)
	}
}

func TestDefineError(t *testing.T) {
	planner := &stubPlanner{err: &types.PlanningError{Err: types.ErrEmptyPlan}}
	ts, client := testClient(t, planner, &stubExecutor{})

	resp := postJSON(t, client, ts.URL+"/api/workflows", map[string]string{"intent": "do nothing"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := sonic.ConfigDefault.UnmarshalFromString(readBody(t, resp), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Title != "Workflow Definition Error" {
		t.Errorf("unexpected error title: %q", apiErr.Title)
	}
	if apiErr.Message == "" {
		t.Error("expected a user-visible message")
	}
}

func TestUpdate(t *testing.T) {
	planner := &stubPlanner{workflow: sampleWorkflow()}
	ts, client := testClient(t, planner, &stubExecutor{})

	doc, err := sampleWorkflow().JSON()
	if err != nil {
		t.Fatalf("workflow JSON: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/workflows", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/workflows: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	readBody(t, resp)

	// The stored workflow becomes the planner's current on the next define.
	readBody(t, postJSON(t, client, ts.URL+"/api/workflows", map[string]string{"intent": "add one more step"}))
	if diff := cmp.Diff(sampleWorkflow(), planner.gotCurrent); diff != "" {
		t.Errorf("expected define to amend the edited workflow (-want +got):\n%s", diff)
	}
}

func TestGetWorkflow(t *testing.T) {
	ts, client := testClient(t, &stubPlanner{}, &stubExecutor{})

	// A fresh session serves the empty seed.
	resp, err := client.Get(ts.URL + "/api/workflows")
	if err != nil {
		t.Fatalf("GET /api/workflows: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	seed, err := types.ParseWorkflow([]byte(readBody(t, resp)))
	if err != nil {
		t.Fatalf("parse seed workflow: %v", err)
	}
	if seed.Name != types.DefaultWorkflowName || len(seed.Steps) != 0 {
		t.Errorf("unexpected seed workflow: %+v", seed)
	}

	// After an update the stored document comes back, compact.
	doc, err := sampleWorkflow().JSON()
	if err != nil {
		t.Fatalf("workflow JSON: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/workflows", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	putResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/workflows: %v", err)
	}
	readBody(t, putResp)

	resp, err = client.Get(ts.URL + "/api/workflows")
	if err != nil {
		t.Fatalf("GET /api/workflows: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	body := readBody(t, resp)
	if strings.Contains(body, "\n") {
		t.Errorf("expected compact JSON, got:\n%s", body)
	}
	got, err := types.ParseWorkflow([]byte(body))
	if err != nil {
		t.Fatalf("parse workflow: %v", err)
	}
	if diff := cmp.Diff(sampleWorkflow(), got); diff != "" {
		t.Errorf("workflow mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateInvalid(t *testing.T) {
	ts, client := testClient(t, &stubPlanner{}, &stubExecutor{})

	for name, doc := range map[string]string{
		"not json":      "not a workflow",
		"unknown field": `{"name": "W", "steps": [], "extra": true}`,
		"missing title": `{"name": "W", "steps": [{"title": "", "prompt": "p"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/workflows", strings.NewReader(doc))
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("PUT /api/workflows: %v", err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			if !strings.Contains(body, "Workflow Update Error") {
				t.Errorf("expected update error title, got %s", body)
			}
		})
	}
}

// sseEvent is one parsed Server-Sent Event.
type sseEvent struct {
	name string

	Text    string `json:"text"`
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, chunk := range strings.Split(body, "\n\n") {
		var event sseEvent
		for _, line := range strings.Split(chunk, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				event.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data := strings.TrimPrefix(line, "data: ")
				if err := sonic.ConfigDefault.UnmarshalFromString(data, &event); err != nil {
					t.Fatalf("decode event data %q: %v", data, err)
				}
			}
		}
		if event.name != "" {
			events = append(events, event)
		}
	}
	return events
}

func uploadImage(t *testing.T, client *http.Client, url string, data []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "input.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	resp, err := client.Post(url, form.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func executionEvents(w *types.Workflow, images ...[]byte) []*types.ExecutionEvent {
	events := []*types.ExecutionEvent{{Kind: types.EventWorkflowStarted}}
	for i := range images {
		step := &w.Steps[i]
		events = append(events,
			&types.ExecutionEvent{Kind: types.EventStepStarted, Index: i, Step: step},
			&types.ExecutionEvent{Kind: types.EventModelText, Index: i, Step: step, Text: fmt.Sprintf("working on step %d", i+1)},
			&types.ExecutionEvent{Kind: types.EventStepImage, Index: i, Step: step, Image: &genai.Blob{MIMEType: "image/png", Data: images[i]}},
		)
	}
	events = append(events, &types.ExecutionEvent{Kind: types.EventWorkflowDone})
	return events
}

func TestExecute(t *testing.T) {
	w := sampleWorkflow()
	executor := &stubExecutor{events: executionEvents(w, []byte("image-1"), []byte("image-2"))}
	ts, client := testClient(t, &stubPlanner{workflow: w}, executor)

	// Store the workflow first, then run it.
	readBody(t, postJSON(t, client, ts.URL+"/api/workflows", map[string]string{"intent": "rotate then grayscale"}))

	resp := uploadImage(t, client, ts.URL+"/api/executions", []byte("input-image"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected event stream, got %q", ct)
	}

	events := parseSSE(t, readBody(t, resp))
	if len(events) == 0 {
		t.Fatal("expected events, got none")
	}
	if last := events[len(events)-1]; last.name != "done" {
		t.Errorf("expected final done event, got %q", last.name)
	}

	// The executor receives the stored workflow and the uploaded bytes.
	if diff := cmp.Diff(w, executor.gotWorkflow); diff != "" {
		t.Errorf("executor workflow mismatch (-want +got):\n%s", diff)
	}
	if executor.gotInput == nil || !bytes.Equal(executor.gotInput.Data, []byte("input-image")) {
		t.Error("expected executor to receive the uploaded image bytes")
	}

	// The final log carries the original line format, in order.
	var lastLog string
	var imageURLs []string
	for _, event := range events {
		switch event.name {
		case "log":
			lastLog = event.Text
		case "image":
			imageURLs = append(imageURLs, event.URL)
		}
	}
	wantLog := "# Executing Workflow: Rotate and Grayscale\n" +
		"- Step: Rotate ...\n" +
		"> Model: working on step 1\n" +
		"- Step: Grayscale ...\n" +
		"> Model: working on step 2\n" +
		"DONE."
	if lastLog != wantLog {
		t.Errorf("final log mismatch:\nwant %q\ngot  %q", wantLog, lastLog)
	}

	// Both images are streamed and loadable afterwards.
	if len(imageURLs) != 2 {
		t.Fatalf("expected 2 image events, got %d", len(imageURLs))
	}
	for i, url := range imageURLs {
		resp, err := client.Get(ts.URL + url)
		if err != nil {
			t.Fatalf("GET %s: %v", url, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", url, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("artifact %d: expected image/png, got %q", i, ct)
		}
		want := fmt.Sprintf("image-%d", i+1)
		if got := readBody(t, resp); got != want {
			t.Errorf("artifact %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestExecuteDeterministic(t *testing.T) {
	w := sampleWorkflow()

	run := func() []sseEvent {
		executor := &stubExecutor{events: executionEvents(w, []byte("image-1"), []byte("image-2"))}
		ts, client := testClient(t, &stubPlanner{workflow: w}, executor)
		readBody(t, postJSON(t, client, ts.URL+"/api/workflows", map[string]string{"intent": "rotate then grayscale"}))
		resp := uploadImage(t, client, ts.URL+"/api/executions", []byte("input-image"))
		return parseSSE(t, readBody(t, resp))
	}

	first := run()
	second := run()
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(sseEvent{})); diff != "" {
		t.Errorf("expected identical streams for identical inputs (-first +second):\n%s", diff)
	}
}

func TestExecuteFailure(t *testing.T) {
	w := sampleWorkflow()
	events := executionEvents(w, []byte("image-1"), []byte("image-2"))
	// Cut the script after the first step's image and fail on the second.
	executor := &stubExecutor{
		events: append(events[:4:4], &types.ExecutionEvent{Kind: types.EventStepStarted, Index: 1, Step: &w.Steps[1]}),
		err:    &types.ExecutionError{Index: 1, Title: "Grayscale", Err: errors.New("model unavailable")},
	}
	ts, client := testClient(t, &stubPlanner{workflow: w}, executor)

	readBody(t, postJSON(t, client, ts.URL+"/api/workflows", map[string]string{"intent": "rotate then grayscale"}))
	resp := uploadImage(t, client, ts.URL+"/api/executions", []byte("input-image"))
	events2 := parseSSE(t, readBody(t, resp))

	last := events2[len(events2)-1]
	if last.name != "error" {
		t.Fatalf("expected final error event, got %q", last.name)
	}
	if last.Title != "Workflow Execution Error" {
		t.Errorf("unexpected error title: %q", last.Title)
	}
	if !strings.Contains(last.Message, "Grayscale") {
		t.Errorf("expected the failing step in the message, got %q", last.Message)
	}

	// The first step's image was streamed before the failure and remains
	// loadable.
	var imageURL string
	for _, event := range events2 {
		if event.name == "image" {
			imageURL = event.URL
		}
	}
	if imageURL == "" {
		t.Fatal("expected an image event before the failure")
	}
	getResp, err := client.Get(ts.URL + imageURL)
	if err != nil {
		t.Fatalf("GET %s: %v", imageURL, err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("expected partial result to stay loadable, got %d", getResp.StatusCode)
	}
	readBody(t, getResp)
}

func TestExecuteWithoutUpload(t *testing.T) {
	ts, client := testClient(t, &stubPlanner{}, &stubExecutor{})

	resp, err := client.Post(ts.URL+"/api/executions", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /api/executions: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Workflow Execution Error") {
		t.Errorf("expected execution error title, got %s", body)
	}
}

func TestArtifactNotFound(t *testing.T) {
	ts, client := testClient(t, &stubPlanner{}, &stubExecutor{})

	resp, err := client.Get(ts.URL + "/api/artifacts/image-001")
	if err != nil {
		t.Fatalf("GET artifact: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
