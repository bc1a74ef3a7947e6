package room

// Event names on the outbound channel. These are part of the client
// protocol and must not change between releases.
const (
	EventEnterRoom    = "enter_room"
	EventEnterNewUser = "enter_new_user"
	EventLeaveUser    = "leave_user"
	EventMove         = "move"
	EventStartRound   = "start_round"
	EventEndRound     = "end_round"
	EventEndGame      = "end_game"
	EventChatMessage  = "chat_message"
)

// EventSink is the outbound boundary to the transport layer. Implementations
// must not block; a slow consumer drops events rather than stalling the room.
type EventSink interface {
	// Send delivers an event to a single user.
	Send(userID, event string, payload any)
	// Broadcast delivers an event to every member of a room, optionally
	// excluding one user (pass "" to exclude nobody).
	Broadcast(roomID, event string, payload any, excludeUserID string)
}

// Direction is a single-cell movement command.
type Direction string

// The four movement directions. LEFT/RIGHT change indexX, UP/DOWN indexY.
const (
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
)

// CharacterEntry is one roster row: a placed character plus its owner's
// nickname.
type CharacterEntry struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	IndexX   int    `json:"indexX"`
	IndexY   int    `json:"indexY"`
	IsMine   bool   `json:"isMine"`
}

// CharacterLocation is a bare placement used in round-start payloads.
type CharacterLocation struct {
	UserID string `json:"userId"`
	IndexX int    `json:"indexX"`
	IndexY int    `json:"indexY"`
}

// EnterRoomPayload is the full snapshot sent to a joining user.
type EnterRoomPayload struct {
	CharacterList []CharacterEntry `json:"characterList"`
	IsGameStarted bool             `json:"isGameStarted"`
	Question      string           `json:"question"`
	TimeLimit     int              `json:"timeLimit"`
	IsOwner       bool             `json:"isOwner"`
}

// EnterNewUserPayload is the roster delta sent to existing members when
// someone joins. It always carries exactly one entry.
type EnterNewUserPayload struct {
	CharacterList []CharacterEntry `json:"characterList"`
}

// LeaveUserPayload announces a departure. IsOwner is true when the departing
// user owned the room, telling clients ownership has moved.
type LeaveUserPayload struct {
	Nickname string `json:"nickname"`
	IsOwner  bool   `json:"isOwner"`
}

// MovePayload announces a successful move. Clients resolve the new
// coordinates from their own state plus the direction.
type MovePayload struct {
	Nickname  string    `json:"nickname"`
	Direction Direction `json:"direction"`
}

// StartRoundPayload announces a new round.
type StartRoundPayload struct {
	Round              int                 `json:"round"`
	Question           string              `json:"question"`
	CharacterLocations []CharacterLocation `json:"characterLocations"`
	TimeLimit          int                 `json:"timeLimit"`
}

// EndRoundPayload announces the round outcome.
type EndRoundPayload struct {
	Answer     string   `json:"answer"`
	Eliminated []string `json:"eliminated"`
}

// EndGamePayload announces the end of a game and the return to the lobby.
type EndGamePayload struct {
	WinnerNickname string           `json:"winnerNickname"`
	CharacterList  []CharacterEntry `json:"characterList"`
	IsGameStarted  bool             `json:"isGameStarted"`
}

// ChatMessagePayload relays a chat line.
type ChatMessagePayload struct {
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}
