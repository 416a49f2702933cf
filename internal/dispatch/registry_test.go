// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"encoding/json"
	"testing"
)

func TestRegisterAndDispatch(t *testing.T) {
	r := NewRegistry()

	var got json.RawMessage
	calls := 0
	r.Register("Version", func(payload json.RawMessage) {
		calls++
		got = payload
	})

	payload := json.RawMessage(`{"PHDVersion":"2.6.11"}`)
	if !r.Dispatch("Version", payload) {
		t.Fatal("Dispatch() = false for registered name")
	}

	if calls != 1 {
		t.Errorf("expected exactly one handler invocation, got %d", calls)
	}

	if string(got) != string(payload) {
		t.Errorf("handler received %s, want %s", got, payload)
	}
}

func TestDispatchUnregistered(t *testing.T) {
	r := NewRegistry()

	r.Register("GuideStep", func(json.RawMessage) {
		t.Error("handler invoked for a different name")
	})

	if r.Dispatch("NoSuchEvent", nil) {
		t.Error("Dispatch() = true for unregistered name")
	}
}

func TestReRegisterReplaces(t *testing.T) {
	r := NewRegistry()

	first := 0
	second := 0
	r.Register("Alert", func(json.RawMessage) { first++ })
	r.Register("Alert", func(json.RawMessage) { second++ })

	r.Dispatch("Alert", nil)

	if first != 0 {
		t.Errorf("replaced handler invoked %d times, want 0", first)
	}
	if second != 1 {
		t.Errorf("replacement handler invoked %d times, want 1", second)
	}
}

func TestHas(t *testing.T) {
	r := NewRegistry()

	if r.Has("SettleDone") {
		t.Error("Has() = true on empty registry")
	}

	r.Register("SettleDone", func(json.RawMessage) {})

	if !r.Has("SettleDone") {
		t.Error("Has() = false for registered name")
	}
	if r.Has("SettleBegin") {
		t.Error("Has() = true for unregistered name")
	}
}
