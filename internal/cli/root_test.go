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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/phdlink/internal/config"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc123", "2025-06-01")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "phdlink version 1.2.3")
	assert.Contains(t, out.String(), "abc123")
}

func TestVersionCommandJSON(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc123", "2025-06-01")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"version", "--json"})

	require.NoError(t, cmd.Execute())

	var info versionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
}

func TestSetupFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: observatory.local\nport: 4401\n"), 0o600))

	a := &app{configPath: path, host: "10.0.0.5"}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	flags.Int("port", 0, "")
	require.NoError(t, flags.Set("host", "10.0.0.5"))

	require.NoError(t, a.setup(flags))

	assert.Equal(t, "10.0.0.5", a.cfg.Host, "flag beats config file")
	assert.Equal(t, 4401, a.cfg.Port, "config file beats default")
	assert.NotNil(t, a.logger)
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 99999\n"), 0o600))

	a := &app{configPath: path}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	flags.Int("port", 0, "")

	assert.Error(t, a.setup(flags))
}

func TestSettleFlagMerging(t *testing.T) {
	a := &app{cfg: config.Default()}
	a.cfg.Settle.Pixels = 2.0

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var pixels, settleTime, timeout float64
	addSettleFlags(flags, &pixels, &settleTime, &timeout)
	require.NoError(t, flags.Set("settle-time", "20"))

	settle := a.settle(flags, pixels, settleTime, timeout)

	assert.Equal(t, 2.0, settle.Pixels, "config value kept when flag unset")
	assert.Equal(t, 20.0, settle.Time, "explicit flag wins")
	assert.Equal(t, a.cfg.Settle.Timeout, settle.Timeout)
}
