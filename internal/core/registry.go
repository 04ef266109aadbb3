package core

import "sort"

// PresenceEntry records that a user is online and where to reach them.
type PresenceEntry struct {
	User      UserID
	Conn      ConnID
	Signaling SignalingID
}

// Lookup is the answer to "where is this user right now". An offline user
// yields a zero Conn and Online=false; that is a valid answer, not an error.
type Lookup struct {
	User      UserID
	Signaling SignalingID
	Online    bool
	Conn      ConnID
}

// Registry maps logical users to their current connection and signaling id.
// It is not safe for concurrent use; the hub loop owns it.
type Registry struct {
	entries map[UserID]*PresenceEntry
	// signaling keeps the last signaling id announced per user, including
	// users that have no presence entry yet.
	signaling map[UserID]SignalingID
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[UserID]*PresenceEntry),
		signaling: make(map[UserID]SignalingID),
	}
}

// Announce creates or overwrites the entry for user, owned by conn. It returns
// the connection that owned the previous entry, if any.
func (r *Registry) Announce(conn ConnID, user UserID) (PresenceEntry, ConnID) {
	var previous ConnID
	if old, ok := r.entries[user]; ok {
		previous = old.Conn
	}
	entry := &PresenceEntry{
		User:      user,
		Conn:      conn,
		Signaling: r.signaling[user],
	}
	r.entries[user] = entry
	return *entry, previous
}

// SetSignaling records a signaling id for user. It reports whether a presence
// entry existed and was updated; the id is remembered either way so that a
// later Announce carries it.
func (r *Registry) SetSignaling(user UserID, sig SignalingID) bool {
	r.signaling[user] = sig
	entry, ok := r.entries[user]
	if !ok {
		return false
	}
	entry.Signaling = sig
	return true
}

// Lookup resolves a user. It never fails.
func (r *Registry) Lookup(user UserID) Lookup {
	res := Lookup{User: user, Signaling: r.signaling[user]}
	if entry, ok := r.entries[user]; ok {
		res.Online = true
		res.Conn = entry.Conn
		res.Signaling = entry.Signaling
	}
	return res
}

// ConnOf returns the connection currently on record for user.
func (r *Registry) ConnOf(user UserID) (ConnID, bool) {
	entry, ok := r.entries[user]
	if !ok {
		return "", false
	}
	return entry.Conn, true
}

// Remove deletes the entry of user only if conn still owns it. A close event
// from a connection the user has since replaced must not evict the newer one.
func (r *Registry) Remove(conn ConnID, user UserID) bool {
	entry, ok := r.entries[user]
	if !ok || entry.Conn != conn {
		return false
	}
	delete(r.entries, user)
	delete(r.signaling, user)
	return true
}

// Snapshot returns all entries ordered by user id.
func (r *Registry) Snapshot() []PresenceEntry {
	out := make([]PresenceEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out
}

// Len returns the number of online users.
func (r *Registry) Len() int {
	return len(r.entries)
}
