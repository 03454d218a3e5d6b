package calendar

// EventRecord is a one-off event on an exact date.
type EventRecord struct {
	Title string `json:"title"`
	Date  Date   `json:"date"`
}

// HolidayRecord names a public holiday on an exact date.
type HolidayRecord struct {
	Date Date   `json:"date"`
	Name string `json:"name"`
}

// SongRecord is a song assigned to an exact date.
type SongRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  Date   `json:"date"`
}

// BirthdayRecord is a family member's birthday. It recurs every year on
// MonthDay.
type BirthdayRecord struct {
	MemberID string      `json:"memberId"`
	Name     string      `json:"name"`
	MonthDay MonthDayKey `json:"monthDay"`
}

// Sources are the four pre-indexed lookups the resolver reads from.
// A nil map behaves like an empty one.
type Sources struct {
	EventsByDate        map[ExactDateKey][]EventRecord
	HolidaysByDate      map[ExactDateKey]string
	SongsByDate         map[ExactDateKey][]SongRecord
	BirthdaysByMonthDay map[MonthDayKey][]BirthdayRecord
}
