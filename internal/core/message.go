package core

// Message is a chat message as routed by the hub. Fields holds every
// attribute the client sent besides the room and content; the hub forwards
// them untouched.
type Message struct {
	Room    Room
	From    UserID
	Content string
	Fields  map[string]any
}

// withRoom returns a copy of m addressed to room.
func (m Message) withRoom(room Room) Message {
	m.Room = room
	return m
}

// BoardMutation is a kanban change announced by the client that made it.
type BoardMutation int

const (
	CardMoved BoardMutation = iota
	CardCreated
	CardDeleted
	SectionUpdated
	SectionCreated
	SectionDeleted
)

// boardEvents maps each mutation to the event the other members receive.
var boardEvents = map[BoardMutation]EventKind{
	CardMoved:      EventCardUpdated,
	CardCreated:    EventNewCard,
	CardDeleted:    EventDeleteCard,
	SectionUpdated: EventSectionChanged,
	SectionCreated: EventNewSection,
	SectionDeleted: EventDeleteSection,
}
