// internal/realtime/models.go

package realtime

// Inbound frame types understood by the read loop. Anything else is
// logged and dropped.
const (
	FrameHeartbeat = "heartbeat"
	FrameJoinRoom  = "join_room"
	FrameLeaveRoom = "leave_room"
)

// InboundFrame is the control envelope clients send over the socket.
type InboundFrame struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
}
