// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

// streamPayload is the data field of every Server-Sent Event. Text carries
// the full progress log for log events; Index and URL describe a produced
// image; Title and Message describe a failure.
type streamPayload struct {
	Text    string `json:"text,omitempty"`
	Index   int    `json:"index"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// eventStream writes Server-Sent Events with JSON payloads. JSON keeps the
// data field single-line, so multi-line model commentary cannot break the
// wire format.
type eventStream struct {
	w http.ResponseWriter
	f http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	f.Flush()

	return &eventStream{w: w, f: f}, nil
}

func (s *eventStream) send(name string, payload streamPayload) {
	data, err := sonic.ConfigDefault.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data)
	s.f.Flush()
}

// log replaces the client's progress pane with the full log so far.
func (s *eventStream) log(text string) {
	s.send("log", streamPayload{Text: text})
}

// image announces a produced image by its artifact URL.
func (s *eventStream) image(index int, url string) {
	s.send("image", streamPayload{Index: index, URL: url})
}

// error reports a failure and is the last event of its stream.
func (s *eventStream) error(title string, err error) {
	s.send("error", streamPayload{Title: title, Message: err.Error()})
}

// done closes a successful stream.
func (s *eventStream) done() {
	s.send("done", streamPayload{})
}
