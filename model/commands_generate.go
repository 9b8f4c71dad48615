package model

import (
	tea "github.com/charmbracelet/bubbletea"
)

// SendToModel starts the exchange described by req in the background and
// returns a command yielding its first message. Every StreamChunkMsg carries
// the channel to wait on for the next one; the stream always ends with
// exactly one StreamDoneMsg or StreamErrorMsg.
func (m *Model) SendToModel(req GenerateRequest) tea.Cmd {
	ctx := m.Context()
	factory := m.NewProvider
	ch := make(chan tea.Msg, 16)

	go func() {
		defer close(ch)

		send := func(msg tea.Msg) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		res, err := Generate(ctx, factory, req, func(display string) {
			send(StreamChunkMsg{Display: display, Stream: ch})
		})
		if err != nil {
			send(StreamErrorMsg{Err: err, Partial: res})
			return
		}
		send(StreamDoneMsg{Result: res})
	}()

	return WaitForStream(ch)
}

// WaitForStream returns the next message from a running exchange.
func WaitForStream(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// HandleStreamMsg applies a stream message to the session and returns the
// command that continues the stream, if any.
func (m *Model) HandleStreamMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StreamChunkMsg:
		m.ApplyDisplay(msg.Display)
		return WaitForStream(msg.Stream)
	case StreamDoneMsg:
		m.Complete(msg.Result.Final)
		return m.SaveSession()
	case StreamErrorMsg:
		m.Fail(msg.Err)
		return m.SaveSession()
	}
	return nil
}
