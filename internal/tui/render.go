package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"moia/internal/chat"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// RenderTranscript 渲染完整会话记录
// RenderTranscript renders the whole transcript for the chat viewport.
// Assistant replies go through the markdown renderer; user messages are
// shown verbatim with an image count when they carry attachments.
func RenderTranscript(messages []chat.Message, width int, theme Theme) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(theme.UserStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Text())
			if n := len(msg.Images()); n > 0 {
				b.WriteString("\n")
				b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("[%d image(s)]", n)))
			}
			b.WriteString("\n\n")
		case chat.RoleAssistant:
			b.WriteString(theme.TitleStyle.Render("MoIA"))
			b.WriteString("\n")
			b.WriteString(RenderMarkdown(msg.Text(), width))
			b.WriteString("\n\n")
		}
		// system messages never reach the transcript view
	}
	return strings.TrimRight(b.String(), "\n")
}
