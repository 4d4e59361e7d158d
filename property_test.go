// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"strconv"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newProperties(t *testing.T) *gopter.Properties {
	t.Helper()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	return gopter.NewProperties(parameters)
}

func TestTaskRoundTripProperty(t *testing.T) {
	properties := newProperties(t)

	properties.Property("encoding then decoding a task yields an equal task", prop.ForAll(
		func(id, contextID, text string, stateIdx, historyLen, artifactLen int, withMetadata bool) bool {
			if id == "" {
				id = "t"
			}
			task := &Task{
				ID:        id,
				ContextID: contextID,
				Status:    TaskStatus{State: TaskStates[stateIdx]},
			}
			for i := range historyLen {
				task.History = append(task.History, userMessage("m"+strconv.Itoa(i), text))
			}
			for i := range artifactLen {
				task.Artifacts = append(task.Artifacts, &Artifact{
					ArtifactID: "a" + strconv.Itoa(i),
					Parts:      []Part{NewTextPart(text), NewFilePartWithURI("", "", "https://example.com/"+text)},
				})
			}
			if withMetadata {
				task.Metadata = map[string]any{"text": text, "n": float64(historyLen)}
			}

			data, err := json.Marshal(task)
			if err != nil {
				return false
			}
			var got Task
			if err := json.Unmarshal(data, &got); err != nil {
				return false
			}
			return cmp.Equal(task, &got)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, len(TaskStates)-1),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestResponseExclusivityProperty(t *testing.T) {
	properties := newProperties(t)

	properties.Property("a response is accepted only with exactly one of result and error", prop.ForAll(
		func(withResult, withError bool, code int) bool {
			body := `{"jsonrpc":"2.0","id":1`
			if withResult {
				body += `,"result":null`
			}
			if withError {
				body += `,"error":{"code":` + strconv.Itoa(code) + `,"message":"m"}`
			}
			body += `}`

			resp, err := ParseResponse(MethodPushNotificationConfigDelete, []byte(body))
			if withResult != withError {
				return err == nil && (resp.Result == nil) != (resp.Error == nil)
			}
			return errors.Is(err, ErrSchemaMismatch)
		},
		gen.Bool(),
		gen.Bool(),
		gen.IntRange(-32768, 32767),
	))

	properties.TestingRun(t)
}

func TestFilePartExclusivityProperty(t *testing.T) {
	properties := newProperties(t)

	properties.Property("a file is valid only with exactly one of bytes and uri", prop.ForAll(
		func(withBytes, withURI bool, value string) bool {
			file := map[string]any{}
			if withBytes {
				file["bytes"] = value
			}
			if withURI {
				file["uri"] = value
			}
			_, err := ParsePart(map[string]any{"kind": "file", "file": file})
			if withBytes != withURI {
				return err == nil
			}
			return errors.Is(err, ErrInvalidPart)
		},
		gen.Bool(),
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestFoldReplayProperty(t *testing.T) {
	properties := newProperties(t)

	properties.Property("replaying a non-append frame is idempotent", prop.ForAll(
		func(artifactID, text string, stateIdx int, asStatus bool) bool {
			base := &Task{ID: "t", ContextID: "c", Status: TaskStatus{State: TaskStateWorking}}

			var ev Event
			if asStatus {
				state := TaskStates[stateIdx]
				if state.IsTerminal() {
					return true
				}
				ev = &TaskStatusUpdateEvent{
					TaskID:    "t",
					ContextID: "c",
					Status: TaskStatus{
						State:   state,
						Message: &Message{Role: RoleAgent, MessageID: "m-" + text, Parts: []Part{NewTextPart(text)}},
					},
				}
			} else {
				ev = &TaskArtifactUpdateEvent{
					TaskID:    "t",
					ContextID: "c",
					Artifact:  &Artifact{ArtifactID: "a" + artifactID, Parts: []Part{NewTextPart(text)}},
				}
			}

			once, err := ApplyEvent(base, ev)
			if err != nil {
				return false
			}
			twice, err := ApplyEvent(once, ev)
			if err != nil {
				return false
			}
			return cmp.Equal(once, twice)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, len(TaskStates)-1),
		gen.Bool(),
	))

	properties.Property("replaying an append frame duplicates its parts", prop.ForAll(
		func(text string, times int) bool {
			p := NewProjector(&Task{
				ID:        "t",
				Status:    TaskStatus{State: TaskStateWorking},
				Artifacts: []*Artifact{{ArtifactID: "a", Parts: []Part{NewTextPart("base")}}},
			})
			ev := &TaskArtifactUpdateEvent{
				TaskID:   "t",
				Artifact: &Artifact{ArtifactID: "a", Parts: []Part{NewTextPart(text)}},
				Append:   true,
			}
			for range times {
				if err := p.Apply(ev); err != nil {
					return false
				}
			}
			return len(p.Task().Artifact("a").Parts) == 1+times
		},
		gen.AlphaString(),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
