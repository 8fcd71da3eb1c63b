package event_bus

const (
	CalendarsLoadedType      EventType = "calendar.loaded"
	CalendarsLoadFailedType  EventType = "calendar.load_failed"
	CalendarCreatedType      EventType = "calendar.created"
	CalendarCreateFailedType EventType = "calendar.create_failed"
	EventsLoadedType         EventType = "event.loaded"
	EventsLoadFailedType     EventType = "event.load_failed"
	EventCreatedType         EventType = "event.created"
	EventCreateFailedType    EventType = "event.create_failed"
)

type CalendarsLoaded struct {
	Count int
}

type CalendarCreated struct {
	Id   string
	Name string
}

type EventsLoaded struct {
	CalendarId string
	Start      string
	End        string
	Count      int
}

type EventCreated struct {
	Id         string
	CalendarId string
	Title      string
	Recurring  bool
}

// OperationFailed is the payload of every *_failed event.
type OperationFailed struct {
	Message string
}
