package librarybook

// IsFree returns true if one free interval of the room holds the whole
// requested window. Free time split across two intervals doesn't count.
func IsFree(room Room, req BookingRequest) bool {
	if room.Available == nil {
		return false
	}
	start, end := req.Window()

	return room.Available.Covers(start, end)
}

// FreeRooms returns the rooms that are free for the request
func FreeRooms(rooms []Room, req BookingRequest) []Room {
	var ret []Room
	for _, room := range rooms {
		if IsFree(room, req) {
			ret = append(ret, room)
		}
	}

	return ret
}
