package models

// ExamSession is one sitting, e.g. "May/June" 2024.
type ExamSession struct {
	ID      string `json:"id" db:"id"`
	Session string `json:"session" db:"session"`
	Year    int    `json:"year" db:"year"`
}
