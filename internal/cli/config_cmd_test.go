// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/qna-tui/internal/config"
)

func TestConfigSetRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, configSet("api.url", "http://board.example:9000/api"))
	require.NoError(t, configSet("session.timeout", "900"))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "http://board.example:9000/api", cfg.API.BaseURL)
	require.Equal(t, 900, cfg.Session.IdleTimeoutSecs)
}

func TestConfigSetRejectsBadInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.Error(t, configSet("session.timeout", "not-a-number"))
	require.Error(t, configSet("session.timeout", "-5"))
	require.Error(t, configSet("no.such.key", "x"))
	require.Error(t, configSet("", ""))
}

func TestConfigSetClampsWarningLead(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// A warning lead at or above the timeout cannot be persisted as-is;
	// the clamp halves it so the warning zone stays non-empty.
	require.NoError(t, configSet("session.timeout", "600"))
	require.NoError(t, configSet("session.warning", "600"))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Less(t, cfg.Session.WarningLeadSecs, cfg.Session.IdleTimeoutSecs)
}
