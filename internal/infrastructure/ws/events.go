package ws

// client -> server
const (
	JoinChatRoom  = "joinChatRoom"
	LeaveChatRoom = "leaveChatRoom"
	ChatMessage   = "chatMessage"
)

// server -> client
const (
	MessageEvent = "message"
	ErrorEvent   = "error"
)

const (
	CodeJoinFailed = "JOIN_FAILED"
)
