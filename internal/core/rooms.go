package core

// Rooms tracks which connections are subscribed to which rooms.
// Like Registry it is owned by the hub loop.
type Rooms struct {
	members map[string]map[ConnID]struct{}
	byConn  map[ConnID]map[string]struct{}
}

// NewRooms constructs an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[ConnID]struct{}),
		byConn:  make(map[ConnID]map[string]struct{}),
	}
}

// Join subscribes conn to room. Returns true if newly added.
// Direct rooms are never stored.
func (r *Rooms) Join(conn ConnID, room Room) bool {
	if room.ID == "" || room.IsDirect() {
		return false
	}
	key := room.Key()
	set, ok := r.members[key]
	if !ok {
		set = make(map[ConnID]struct{})
		r.members[key] = set
	}
	if _, exists := set[conn]; exists {
		return false
	}
	set[conn] = struct{}{}

	joined, ok := r.byConn[conn]
	if !ok {
		joined = make(map[string]struct{})
		r.byConn[conn] = joined
	}
	joined[key] = struct{}{}
	return true
}

// Leave unsubscribes conn from room. Returns true if removed.
func (r *Rooms) Leave(conn ConnID, room Room) bool {
	key := room.Key()
	set, ok := r.members[key]
	if !ok {
		return false
	}
	if _, exists := set[conn]; !exists {
		return false
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.members, key)
	}
	if joined, ok := r.byConn[conn]; ok {
		delete(joined, key)
		if len(joined) == 0 {
			delete(r.byConn, conn)
		}
	}
	return true
}

// DropConnection removes every membership of conn and returns how many rooms
// it was in. The hub calls it when a connection closes.
func (r *Rooms) DropConnection(conn ConnID) int {
	joined := r.byConn[conn]
	for key := range joined {
		if set, ok := r.members[key]; ok {
			delete(set, conn)
			if len(set) == 0 {
				delete(r.members, key)
			}
		}
	}
	delete(r.byConn, conn)
	return len(joined)
}

// Members returns the connections subscribed to room.
func (r *Rooms) Members(room Room) []ConnID {
	set := r.members[room.Key()]
	out := make([]ConnID, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

// IsMember reports whether conn is subscribed to room.
func (r *Rooms) IsMember(conn ConnID, room Room) bool {
	_, ok := r.members[room.Key()][conn]
	return ok
}
