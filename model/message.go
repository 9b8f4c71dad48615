package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of the conversation. Messages are only ever
// appended, never edited.
type Message struct {
	Role      Role
	Content   string
	Rendered  string // cached terminal markdown rendering
	Timestamp time.Time
}

func newMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now()}
}

// ViewMode selects how the workspace presents the current template.
type ViewMode string

const (
	ViewPreview ViewMode = "preview"
	ViewCode    ViewMode = "code"
	ViewSplit   ViewMode = "split"
)

var viewModes = []ViewMode{ViewSplit, ViewPreview, ViewCode}

// Next cycles split → preview → code → split.
func (v ViewMode) Next() ViewMode {
	for i, mode := range viewModes {
		if mode == v {
			return viewModes[(i+1)%len(viewModes)]
		}
	}
	return ViewSplit
}

func ParseViewMode(s string) (ViewMode, bool) {
	for _, mode := range viewModes {
		if string(mode) == s {
			return mode, true
		}
	}
	return ViewSplit, false
}
