// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sigtools/sigtriage/pkg/report/crash"
)

// Styling degrades to plain text on dumb terminals and pipes, lipgloss
// handles that on its own.
var (
	crashStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	culpritStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

var categoryEmoji = map[crash.Category]string{
	crash.Abort:              "🛑",
	crash.BadSyscall:         "📞",
	crash.BusError:           "🚌",
	crash.FloatingPoint:      "➗",
	crash.IllegalInstruction: "⚡",
	crash.Segfault:           "💥",
	crash.Trap:               "🔍",
	crash.UnknownSignal:      "❓",
}

// EmojiPrefix returns e plus a space, or nothing when emoji output is
// disabled.
func (opts Options) EmojiPrefix(e string) string {
	if !opts.Emoji {
		return ""
	}
	return e + " "
}

func (opts Options) headerEmoji(cat crash.Category, exitCode int) string {
	if cat == crash.CleanExit {
		if exitCode != 0 {
			return opts.EmojiPrefix("⚠️")
		}
		return opts.EmojiPrefix("🎉")
	}
	if e := categoryEmoji[cat]; e != "" {
		return opts.EmojiPrefix(e)
	}
	return opts.EmojiPrefix("🔍")
}
