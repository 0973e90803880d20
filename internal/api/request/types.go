package request

// CreateRoomRequest is the request body for creating a room.
// PrePopulate selects how the options pool is seeded: "off" (default),
// "placeholders", or "ai_gen".
type CreateRoomRequest struct {
	Title       string `json:"title"`
	PrePopulate string `json:"prePopulate,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// AddOptionRequest is the request body for adding a pool option
type AddOptionRequest struct {
	Option string `json:"option"`
}
