package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mailcraft/config"
)

// handleStreamingMessage applies a stream message to the data model and
// refreshes both panes.
func (a AppView) handleStreamingMessage(msg tea.Msg) (AppView, tea.Cmd) {
	cmd := a.dataModel.HandleStreamMsg(msg)

	switch msg := msg.(type) {
	case streamChunkMsg:
		a.updateCodeView(true)
		return a, cmd

	case streamDoneMsg:
		config.DebugLog.Debugw("stream done", "fragments", msg.Result.Fragments, "bytes", len(msg.Result.Final))

	case streamErrorMsg:
		config.DebugLog.Debugw("stream failed", "err", msg.Err, "partial_bytes", len(msg.Partial.Display))
	}

	replyIdx := len(a.dataModel.Messages) - 1
	a.updateViewportContent(true)
	a.updateCodeView(false)

	return a, tea.Batch(cmd, a.renderMarkdownAsync(replyIdx, a.dataModel.Messages[replyIdx].Content))
}
