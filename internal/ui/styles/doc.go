// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the qna TUI.

All colors use Lip Gloss AdaptiveColor so the palette picks the variant
matching the detected terminal background.

# Color System

Accent colors:

  - Cyan - brand color, selections and shortcut keys
  - Emerald - vote counts and the accepted-answer mark
  - Amber - session warning dialog and stale-cache notices
  - Rose - errors and the expired-session notice
  - Violet - tag badges

Surface and text colors follow the same layered scheme: Surface for the
header, SurfaceDim for the status bar and badges, TextPrimary/TextMuted
for content hierarchy.

# Theme

The Theme struct bundles the styled components (chrome, question board,
forms, dialogs, notices) and records the terminal's color profile:

	theme := styles.NewTheme()
	title := theme.QuestionTitle.Render("How do I ...")

# Status Indicators

StatusIndicators holds the glyphs shared by toasts and the status bar
(success, error, warning, info).
*/
package styles
