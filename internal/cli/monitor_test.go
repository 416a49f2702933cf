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

package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tombee/phdlink/phd2"
)

func TestSummarizeEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload string
		want    string
	}{
		{
			name:    "guide step",
			event:   phd2.EventGuideStep,
			payload: `{"Event":"GuideStep","Frame":12,"dx":0.5,"dy":-0.25,"AvgDist":0.31,"SNR":24.5}`,
			want:    "frame=12 dx=+0.50 dy=-0.25 dist=0.31 snr=24.5",
		},
		{
			name:    "app state",
			event:   phd2.EventAppState,
			payload: `{"Event":"AppState","State":"Guiding"}`,
			want:    "Guiding",
		},
		{
			name:    "alert",
			event:   phd2.EventAlert,
			payload: `{"Event":"Alert","Msg":"camera timeout","Type":"error"}`,
			want:    "[error] camera timeout",
		},
		{
			name:    "settle done success",
			event:   phd2.EventSettleDone,
			payload: `{"Event":"SettleDone","Status":0,"TotalFrames":7}`,
			want:    "settled after 7 frames",
		},
		{
			name:    "settle done failure",
			event:   phd2.EventSettleDone,
			payload: `{"Event":"SettleDone","Status":1,"Error":"timed-out waiting for guider to settle"}`,
			want:    "failed: timed-out waiting for guider to settle",
		},
		{
			name:    "unknown event falls back to raw payload",
			event:   "SomethingNew",
			payload: `{"Event":"SomethingNew","Field":1}`,
			want:    `{"Event":"SomethingNew","Field":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizeEvent(tt.event, json.RawMessage(tt.payload))
			assert.Equal(t, tt.want, got)
		})
	}
}
