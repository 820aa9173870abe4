package claudecode

import "strings"

// Response aggregates a finished session.
type Response struct {
	Messages      []Message
	Init          *SystemMessage
	Result        *ResultMessage
	SlashCommands []string
}

// SessionID returns the session identifier from the init or result message.
func (r *Response) SessionID() string {
	if r.Init != nil && r.Init.SessionID != "" {
		return r.Init.SessionID
	}
	if r.Result != nil {
		return r.Result.SessionID
	}
	return ""
}

// Text concatenates the text blocks of every assistant message.
func (r *Response) Text() string {
	var sb strings.Builder
	for _, msg := range r.Messages {
		if am, ok := msg.(*AssistantMessage); ok {
			sb.WriteString(am.Text())
		}
	}
	return sb.String()
}

// MatchSlashCommand reports whether cmds contains name, with or without the
// leading slash and with or without a plugin prefix ("handoff:handoff").
func MatchSlashCommand(cmds []string, name string) bool {
	name = strings.TrimPrefix(name, "/")
	for _, cmd := range cmds {
		cmd = strings.TrimPrefix(cmd, "/")
		if cmd == name || strings.HasSuffix(cmd, ":"+name) {
			return true
		}
	}
	return false
}

// Collect drains msgs and errs into a Response. Messages received before an
// error are kept on the returned Response.
func Collect(msgs <-chan Message, errs <-chan error) (*Response, error) {
	resp := &Response{}
	for msg := range msgs {
		resp.Messages = append(resp.Messages, msg)
		switch m := msg.(type) {
		case *SystemMessage:
			if m.Subtype == SubtypeInit && resp.Init == nil {
				resp.Init = m
				resp.SlashCommands = m.SlashCommands
			}
		case *ResultMessage:
			resp.Result = m
		}
	}

	if err := <-errs; err != nil {
		return resp, err
	}
	return resp, nil
}
