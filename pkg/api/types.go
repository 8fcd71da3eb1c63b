package api

// Timestamps are kept as the RFC3339 strings the backend sends; callers parse
// them where a time.Time is needed.

type RecurrenceRule struct {
	Freq       string   `json:"freq"`
	Interval   int      `json:"interval,omitempty"`
	Count      int      `json:"count,omitempty"`
	Until      string   `json:"until,omitempty"`
	ByDay      []string `json:"byday,omitempty"`
	ByMonthDay []int    `json:"bymonthday,omitempty"`
	ByMonth    []int    `json:"bymonth,omitempty"`
	ByWeekNo   []int    `json:"byweekno,omitempty"`
	Wkst       string   `json:"wkst,omitempty"`
}

type Event struct {
	ID          string          `json:"id"`
	CalendarID  string          `json:"calendar_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	DTStart     string          `json:"dtstart"`
	DTEnd       string          `json:"dtend"`
	RRule       *RecurrenceRule `json:"rrule,omitempty"`
	Timezone    string          `json:"timezone"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type Calendar struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Timezone    string  `json:"timezone"`
	Events      []Event `json:"events,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type CreateCalendarRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

type CreateEventRequest struct {
	CalendarID  string          `json:"calendar_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	DTStart     string          `json:"dtstart"`
	DTEnd       string          `json:"dtend"`
	RRule       *RecurrenceRule `json:"rrule,omitempty"`
	Timezone    string          `json:"timezone,omitempty"`
}

type ListCalendarsResponse struct {
	Calendars     []Calendar `json:"calendars"`
	NextPageToken string     `json:"next_page_token,omitempty"`
}

type ListEventsResponse struct {
	Events        []Event `json:"events"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}

type ExpandRecurrenceRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type calendarEnvelope struct {
	Calendar Calendar `json:"calendar"`
}

type eventEnvelope struct {
	Event Event `json:"event"`
}

type instancesEnvelope struct {
	Instances []Event `json:"instances"`
}
