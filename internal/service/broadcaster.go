package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToProgram(programID string, msgType string, payload interface{})
	DisconnectProgram(programID string)
}

// Message types sent to open authoring and preview panels
const (
	MsgDraftUpdated   = "requirements_draft_updated"
	MsgDraftDiscarded = "requirements_draft_discarded"
	MsgPublished      = "requirements_published"
	MsgProgramDeleted = "program_deleted"
)
