package model

// EventName identifies a named event on the session transport
type EventName string

// Inbound events, sent by clients
const (
	EventCreateRoom     EventName = "createRoom"
	EventJoinRoom       EventName = "joinRoom"
	EventMoveToLobby    EventName = "moveToLobby"
	EventMovementUpdate EventName = "movementUpdate"
	EventSendCanvas     EventName = "sendCanvas"
)

// Outbound events, sent by the server
const (
	EventJoined           EventName = "joined"
	EventRoomJoined       EventName = "roomJoined"
	EventRoomError        EventName = "roomError"
	EventUpdateTime       EventName = "updateTime"
	EventUpdatedMovement  EventName = "updatedMovement"
	EventScoreRequest     EventName = "scoreRequest"
	EventResults          EventName = "results"
	EventForceMoveToLobby EventName = "forceMoveToLobby"
	EventLeft             EventName = "left"
)

// RoomRequest is the payload of createRoom, joinRoom and moveToLobby
type RoomRequest struct {
	RoomName string `json:"roomName"`
}

// CanvasSubmission is a client's rendered canvas, submitted in answer to scoreRequest
type CanvasSubmission struct {
	RoomName   string `json:"roomName"`
	Pixels     []byte `json:"pixels"`
	PixelCount int    `json:"pixelCount"`
}

// JoinedPayload is sent to a player once on connect
type JoinedPayload struct {
	Player Player       `json:"player"`
	Lobby  RoomSnapshot `json:"lobby"`
}

// UpdateTimePayload is broadcast to a room on every timer tick
type UpdateTimePayload struct {
	RemainingSeconds int       `json:"remainingSeconds"`
	Phase            RoomPhase `json:"phase"`
}

// RoomErrorPayload describes a rejected request
type RoomErrorPayload struct {
	Message string `json:"message"`
}

// ScoreRequestPayload asks every member of a room to submit its canvas
type ScoreRequestPayload struct {
	RoomName RoomName `json:"roomName"`
}

// ResultsPayload is broadcast to a room once its canvas has been scored
type ResultsPayload struct {
	Text    string  `json:"text"`
	Verdict Verdict `json:"verdict"`
}

// LeftPayload is broadcast to a room when a member disconnects
type LeftPayload struct {
	PlayerID PlayerID `json:"playerId"`
}
