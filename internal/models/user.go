package models

import "time"

// User represents an application user stored in the users table.
type User struct {
	ID                  string    `db:"userid" json:"userid"`
	Email               string    `db:"email" json:"email"`
	Username            string    `db:"username" json:"username"`
	PasswordHash        string    `db:"password" json:"-"`
	Notifications       bool      `db:"notification" json:"notification"`
	TaskNotification    bool      `db:"tasknotification" json:"tasknotification"`
	ClassNotification   bool      `db:"classnotification" json:"classnotification"`
	GroupNotification   bool      `db:"groupnotification" json:"groupnotification"`
	PrivateNotification bool      `db:"privatenotification" json:"privatenotification"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// NotificationColumns maps client-facing preference names onto their user
// table columns. Fields outside this whitelist are rejected before any SQL
// is built.
var NotificationColumns = map[string]string{
	"notifications":   "notification",
	"taskDeadline":    "tasknotification",
	"lectureClass":    "classnotification",
	"groupMessages":   "groupnotification",
	"privateMessages": "privatenotification",
}
