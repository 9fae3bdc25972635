package models

// Module is a course a user is enrolled in.
type Module struct {
	ID         string `db:"moduleid" json:"moduleid"`
	Name       string `db:"modulename" json:"modulename"`
	Title      string `db:"moduletitle" json:"moduletitle"`
	Credits    int    `db:"credits" json:"credits"`
	Instructor string `db:"instructor" json:"instructor"`
	UserID     string `db:"userid" json:"userid"`
}
