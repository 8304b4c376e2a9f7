package entity

import "github.com/google/uuid"

// RoomAdminSupport is the single shared room every admin console joins.
// The literal is part of the wire contract and must not change.
const RoomAdminSupport = "admin-support"

// UserRoom names the private room of one shopper. Exactly the literal
// "user-" plus the shopper identity.
func UserRoom(userID uuid.UUID) string {
	return "user-" + userID.String()
}
