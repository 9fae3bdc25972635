package models

// Assignment is a piece of graded work with a due date and a completion
// percentage maintained by the tracker.
type Assignment struct {
	ID          string `db:"assignmentid" json:"assignmentid"`
	Name        string `db:"assignmentname" json:"assignmentname"`
	ModuleName  string `db:"assignmentmodule" json:"assignmentmodule"`
	Percentage  int    `db:"assignmentpercentage" json:"assignmentpercentage"`
	DueDate     string `db:"assignmentduedate" json:"assignmentduedate"`
	TimeDueDate int    `db:"assignmenttimeduedate" json:"assignmenttimeduedate"`
	TimeNeeded  *int   `db:"timeneeded" json:"timeneeded,omitempty"`
	UserID      string `db:"userid" json:"userid"`
}
