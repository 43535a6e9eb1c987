package domain

// Student statuses
const (
	StudentStatusActive      = "active"
	StudentStatusInactive    = "inactive"
	StudentStatusTransferred = "transferred"
)

// Student represents an enrolled student. Sponsored students are only billed
// for the registration installment; the rest of the schedule is kept for
// reporting.
type Student struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ClassID   string `json:"class_id"`
	Sponsored bool   `json:"sponsored"`
	Status    string `json:"status"`
}

// IsActive reports whether the student is still enrolled.
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// FullName returns the display name used on notices and receipts.
func (s *Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}

// Class represents a class group, which carries the level and school year the
// fee schedule is keyed by.
type Class struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Level      string `json:"level"`
	SchoolYear string `json:"school_year"`
}
