// Copyright 2025 Blink Labs Software
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

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/linkboard/api"
	"github.com/blinklabs-io/linkboard/event"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "https://media.example.com/media/2yLNN4wTy7Zr8JSXHB/giphy.gif"

func newTestNode(t *testing.T) string {
	t.Helper()
	eb := event.NewEventBus(nil, nil)
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		EventBus:      eb,
		BlobCacheSize: 1 << 20,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(api.New(api.Config{DevMode: true}, ls, nil).Handler())
	t.Cleanup(func() {
		ts.Close()
		eb.Stop()
		_ = ls.Close()
	})
	return ts.URL
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err, out.String())
	return out.String()
}

func TestFormatCoins(t *testing.T) {
	assert.Equal(t, "0.001000000", formatCoins(program.TipAmount))
	assert.Equal(t, "1.000000000", formatCoins(program.UnitsPerCoin))
	assert.Equal(t, "12.000000042", formatCoins(12*program.UnitsPerCoin+42))
}

func TestCommandFlow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	apiURL := newTestNode(t)
	keyDir := t.TempDir()
	payerKey := filepath.Join(keyDir, "payer.skey")
	regKey := filepath.Join(keyDir, "registry.skey")
	friendKey := filepath.Join(keyDir, "friend.skey")
	common := []string{"--api-url", apiURL, "--key", payerKey}
	run := func(args ...string) string {
		return runCommand(t, append(args, common...)...)
	}

	payer := strings.TrimSpace(run("keygen"))
	reg := strings.TrimSpace(run("keygen", "-o", regKey))
	friend := strings.TrimSpace(run("keygen", "-o", friendKey))
	assert.NotEqual(t, payer, reg)
	assert.Equal(t, payer, strings.TrimSpace(run("address")))
	assert.Equal(
		t,
		reg,
		strings.TrimSpace(run("address", "--vkey", filepath.Join(keyDir, "registry.vkey"))),
	)

	assert.Contains(t, run("airdrop"), "1.000000000")
	assert.Contains(t, run("registry", "create", "--registry-key", regKey), "registry "+reg)
	assert.Contains(t, run("registry", "add", reg, testLink), "add_entry applied")
	assert.Contains(t, run("registry", "vote", reg, testLink), "vote applied")
	assert.Contains(t, run("registry", "vote-entry", reg, "0"), "vote_entry applied")

	show := run("registry", "show", reg)
	assert.Contains(t, show, "1 entries, 2 votes")
	assert.Contains(t, show, testLink)
	assert.Equal(t, reg, strings.TrimSpace(run("registry", "list")))

	assert.Contains(t, run("tip", friend), "transfer applied")
	assert.Contains(t, run("balance", friend), "0.001000000")

	history := run("history", "-n", "10")
	assert.Contains(t, history, "transfer")
	assert.Contains(t, history, "initialize")
	friendHistory := run("history", friend)
	assert.Contains(t, friendHistory, "transfer")
	assert.NotContains(t, friendHistory, "initialize")
}

func TestCommandErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	apiURL := newTestNode(t)
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"registry", "show", "not-an-address", "--api-url", apiURL})
	require.Error(t, cmd.Execute())

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"registry", "vote-entry", strings.Repeat("00", 32), "x", "--api-url", apiURL})
	require.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Contains(t, runCommand(t, "version"), programName+" ")
}
