package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"moia/internal/chat"
	"moia/internal/i18n"
)

var replCommands = []struct {
	name, args, helpKey string
}{
	{"/help", "", "cmd.help"},
	{"/new", "", "cmd.new"},
	{"/list", "", "cmd.list"},
	{"/open", "<n|id>", "cmd.open"},
	{"/delete", "[n|id]", "cmd.delete"},
	{"/vision", "[on|off]", "cmd.vision"},
	{"/attach", "<file>...", "cmd.attach"},
	{"/attachments", "", "cmd.attachments"},
	{"/remove", "<n>", "cmd.remove"},
	{"/quit", "", "cmd.quit"},
}

// handleCommand dispatches a slash command. It returns whether the input
// was recognized and whether the loop should exit.
func (l *Loop) handleCommand(input string) (handled, quit bool) {
	parts := strings.Fields(input)
	cmd, args := parts[0], parts[1:]
	ctx := context.Background()

	switch cmd {
	case "/quit", "/exit":
		return true, true

	case "/help":
		fmt.Fprintln(l.out, "commands:")
		for _, c := range replCommands {
			usage := c.name
			if c.args != "" {
				usage += " " + c.args
			}
			fmt.Fprintf(l.out, "  %-22s %s\n", usage, i18n.T(c.helpKey))
		}
		return true, false

	case "/new":
		l.Session.StartNew()
		fmt.Fprintln(l.out, dim(i18n.T("status.new")))
		return true, false

	case "/list":
		if err := l.Directory.Refresh(ctx); err != nil {
			fmt.Fprintln(l.out, red(i18n.T("error.load", err)))
			return true, false
		}
		l.printConversations()
		return true, false

	case "/open":
		if len(args) == 0 {
			fmt.Fprintln(l.out, "usage: /open <n|id>")
			return true, false
		}
		id := l.resolveConversation(args[0])
		if id == "" {
			fmt.Fprintf(l.out, "no conversation %q\n", args[0])
			return true, false
		}
		if err := l.Directory.Select(ctx, id); err != nil {
			fmt.Fprintln(l.out, red(i18n.T("error.load", err)))
			return true, false
		}
		l.printTranscript()
		return true, false

	case "/delete":
		id := l.Session.ConversationID()
		if len(args) > 0 {
			id = l.resolveConversation(args[0])
		}
		if id == "" {
			fmt.Fprintln(l.out, "nothing to delete")
			return true, false
		}
		if err := l.Directory.Remove(ctx, id); err != nil {
			fmt.Fprintln(l.out, red(i18n.T("error.delete", err)))
		}
		return true, false

	case "/vision":
		enabled := !l.Session.VisionEnabled()
		if len(args) > 0 {
			enabled = strings.EqualFold(args[0], "on")
		}
		l.Session.SetVision(enabled)
		if enabled {
			fmt.Fprintln(l.out, dim(i18n.T("status.vision_on")))
		} else {
			fmt.Fprintln(l.out, dim(i18n.T("status.vision_off")))
		}
		return true, false

	case "/attach":
		if len(args) == 0 {
			fmt.Fprintln(l.out, "usage: /attach <file>...")
			return true, false
		}
		if !l.Session.VisionEnabled() {
			l.Session.SetVision(true)
			fmt.Fprintln(l.out, dim(i18n.T("status.vision_on")))
		}
		if err := l.Session.Attachments().AddFiles(args...); err != nil {
			fmt.Fprintln(l.out, red(i18n.T("error.attach", err)))
			return true, false
		}
		fmt.Fprintln(l.out, dim(i18n.T("status.attachments", l.Session.Attachments().Count())))
		return true, false

	case "/attachments":
		atts := l.Session.Attachments().List()
		if len(atts) == 0 {
			fmt.Fprintln(l.out, dim("no attachments"))
			return true, false
		}
		for i, a := range atts {
			fmt.Fprintf(l.out, "  %d. %s (%s)\n", i+1, a.Path, a.MIME)
		}
		return true, false

	case "/remove":
		if len(args) == 0 {
			fmt.Fprintln(l.out, "usage: /remove <n>")
			return true, false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fmt.Fprintf(l.out, "bad attachment number %q\n", args[0])
			return true, false
		}
		l.Session.Attachments().RemoveAt(n - 1)
		return true, false
	}

	return false, false
}

// resolveConversation maps a 1-based list position or a raw id to a
// conversation id, or "" when nothing matches.
func (l *Loop) resolveConversation(arg string) string {
	convs := l.Directory.Conversations()
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(convs) {
			return convs[n-1].ID
		}
		return ""
	}
	for _, cv := range convs {
		if cv.ID == arg {
			return cv.ID
		}
	}
	return ""
}

func (l *Loop) printConversations() {
	convs := l.Directory.Conversations()
	if len(convs) == 0 {
		fmt.Fprintln(l.out, dim(i18n.T("conv.empty")))
		return
	}
	active := l.Session.ConversationID()
	for i, cv := range convs {
		title := cv.Title
		if strings.TrimSpace(title) == "" {
			title = i18n.T("conv.untitled")
		}
		marker := "  "
		if cv.ID == active {
			marker = "· "
		}
		fmt.Fprintf(l.out, "%s%d. %s %s\n", marker, i+1, title, dim(cv.Date))
	}
}

func (l *Loop) printTranscript() {
	for _, msg := range l.Session.Messages() {
		switch msg.Role {
		case chat.RoleUser:
			fmt.Fprintf(l.out, "%s %s\n", cyan("you:"), msg.Text())
		case chat.RoleAssistant:
			fmt.Fprintln(l.out, msg.Text())
		}
	}
}
