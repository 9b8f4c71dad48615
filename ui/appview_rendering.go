package ui

import (
	"fmt"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"mailcraft/config"
	appmodel "mailcraft/model"
)

const (
	headerHeight = 1
	footerHeight = 1
	inputHeight  = 3
)

// layout sizes every component from the window size and view mode.
func (a *AppView) layout() {
	chatW := a.chatWidth()
	bodyH := a.height - headerHeight - footerHeight

	// Pane borders take two cells in each direction.
	a.textarea.SetWidth(chatW - 2)
	a.viewport.Width = chatW - 2
	a.viewport.Height = max(bodyH-inputHeight-4, 1)

	wsW := a.width - chatW
	a.codeView.Width = max(wsW-2, 1)
	codeH := bodyH - 2
	if a.dataModel.ViewMode == appmodel.ViewSplit {
		codeH -= a.previewPaneHeight() + 2
	}
	a.codeView.Height = max(codeH, 1)
}

func (a AppView) chatWidth() int {
	w := a.width * 2 / 5
	if w < 30 {
		w = min(30, a.width)
	}
	return w
}

func (a AppView) previewPaneHeight() int {
	return 7
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Messages) == 0 {
		a.viewport.SetContent(DimStyle.Render("Describe an email to get started."))
		return
	}

	var content strings.Builder
	lastIdx := len(a.dataModel.Messages) - 1

	for i, msg := range a.dataModel.Messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		role := AssistantStyle.Render("mailcraft")
		if msg.Role == appmodel.RoleUser {
			role = UserStyle.Render("You")
		}

		body := msg.Rendered
		if body == "" {
			body = msg.Content
		}
		if msg.Role == appmodel.RoleModel && i == lastIdx && a.dataModel.NeedsCredentialAttention() {
			body = ErrorStyle.Render(body)
		}

		fmt.Fprintf(&content, "%s %s\n%s\n\n", timestamp, role, strings.TrimRight(body, "\n"))
	}

	if a.dataModel.Generating {
		fmt.Fprintf(&content, "%s %s\n", a.loadingSpinner.View(), DimStyle.Render("Generating template..."))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// updateCodeView shows the template source with line numbers.
func (a *AppView) updateCodeView(gotoBottom bool) {
	a.codeView.SetContent(renderCode(a.dataModel.Template, a.codeView.Width))
	if !gotoBottom {
		return
	}
	// Follow the stream while it grows, then jump back to the top.
	if a.dataModel.Generating {
		a.codeView.GotoBottom()
	} else {
		a.codeView.GotoTop()
	}
}

func renderCode(html string, width int) string {
	if html == "" {
		return DimStyle.Render("Waiting for the first fragment...")
	}

	lines := strings.Split(html, "\n")
	gutter := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		num := LineNumberStyle.Render(fmt.Sprintf("%*d │ ", gutter, i+1))
		line = strings.ReplaceAll(line, "\t", "  ")
		b.WriteString(num + truncate(line, width-gutter-3))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (a AppView) renderMain() string {
	chatW := a.chatWidth()
	bodyH := a.height - headerHeight - footerHeight

	chat := PaneStyle.
		Width(chatW - 2).
		Height(bodyH - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			a.viewport.View(),
			strings.Repeat("─", max(chatW-2, 0)),
			a.textarea.View(),
		))

	workspace := a.renderWorkspace(a.width-chatW, bodyH)

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, chat, workspace),
		a.renderFooter(),
	)
}

func (a AppView) renderHeader() string {
	title := TitleStyle.Render("mailcraft")
	info := StatusStyle.Render(fmt.Sprintf("%s · %s · %s view",
		config.ProviderDisplayName(a.dataModel.ProviderID), a.dataModel.ModelID, a.dataModel.ViewMode))
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(info)
	if gap < 1 {
		return truncate(title+" "+info, a.width)
	}
	return title + strings.Repeat(" ", gap) + info
}

func (a AppView) renderWorkspace(width, height int) string {
	switch a.dataModel.ViewMode {
	case appmodel.ViewCode:
		return a.renderCodePane(width, height)
	case appmodel.ViewPreview:
		return a.renderPreviewPane(width, height)
	default:
		preview := a.renderPreviewPane(width, a.previewPaneHeight()+2)
		code := a.renderCodePane(width, height-a.previewPaneHeight()-2)
		return lipgloss.JoinVertical(lipgloss.Left, preview, code)
	}
}

func (a AppView) renderCodePane(width, height int) string {
	return PaneStyle.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Render(a.codeView.View())
}

func (a AppView) renderPreviewPane(width, height int) string {
	inner := max(width-4, 1)
	var lines []string

	if a.previewURL != "" {
		lines = append(lines, "Live preview: "+HighlightStyle.Render(a.previewURL))
	} else {
		lines = append(lines, DimStyle.Render("Browser preview is off (preview.enabled in config.toml)"))
	}
	lines = append(lines, "")

	stats := templateStats(a.dataModel.Template)
	switch {
	case a.dataModel.Generating:
		lines = append(lines, a.loadingSpinner.View()+" Streaming template... "+DimStyle.Render(stats))
	case a.dataModel.HasTemplate():
		lines = append(lines, SelectedStyle.Render("Template ready")+"  "+DimStyle.Render(stats))
	default:
		lines = append(lines, DimStyle.Render("Showing the welcome placeholder"))
	}
	if title := htmlTitle(a.dataModel.Template); title != "" {
		lines = append(lines, "Title: "+title)
	}

	for i, l := range lines {
		lines[i] = truncate(l, inner)
	}

	return PaneStyle.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func templateStats(html string) string {
	if html == "" {
		return "0 bytes"
	}
	return fmt.Sprintf("%d bytes · %d lines · %d tables",
		len(html), strings.Count(html, "\n")+1, strings.Count(strings.ToLower(html), "<table"))
}

// htmlTitle returns the contents of the first <title> element.
func htmlTitle(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<title>")
	if start < 0 {
		return ""
	}
	start += len("<title>")
	end := strings.Index(lower[start:], "</title>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(html[start : start+end])
}

func (a AppView) renderFooter() string {
	if a.flash != "" {
		style := SelectedStyle
		if a.flashIsErr {
			style = ErrorStyle
		}
		return truncate(style.Render(a.flash), a.width)
	}

	settings := "API Key"
	if a.dataModel.NeedsCredentialAttention() {
		settings = HighlightStyle.Render("API Key ←")
	}

	return truncate(FormatFooter(
		"Enter", "Send",
		"alt+v", "View",
		"alt+y", "Copy",
		"alt+e", "Export",
		"alt+t", "Test email",
		"alt+m", "Model",
		"alt+s", settings,
		"alt+h", "Help",
	), a.width)
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.chatWidth() - 4
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)
		config.DebugLog.Debugw("markdown rendered", "message", messageIndex, "elapsed", time.Since(start))
		return markdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     rendered,
		}
	}
}

// renderMarkdown renders chat text for the terminal. Autolinks stay off so
// the terminal can detect plain URLs itself.
func renderMarkdown(content string, width int) string {
	if width < 10 {
		width = 10
	}
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(content))
	return strings.TrimRight(string(gomarkdown.Render(doc, r)), "\n")
}
