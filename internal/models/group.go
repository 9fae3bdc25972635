package models

// Group is a study group chat room.
type Group struct {
	ID             string `db:"groupid" json:"groupid"`
	Name           string `db:"groupname" json:"groupname"`
	Description    string `db:"groupdescription" json:"groupdescription"`
	InvitationCode string `db:"invitationcode" json:"invitationcode"`
}

// GroupMember links a user to a group.
type GroupMember struct {
	ID      string `db:"memberid" json:"memberid"`
	UserID  string `db:"userid" json:"userid"`
	GroupID string `db:"groupid" json:"groupid"`
}

// GroupSummary is the per-user listing row for the chat overview screen.
type GroupSummary struct {
	ID   string `db:"groupid" json:"groupid"`
	Name string `db:"groupname" json:"groupname"`
}

// GroupDescriptionEntry is one roster row of the description view: the
// group's metadata repeated per member.
type GroupDescriptionEntry struct {
	Username       string `db:"username" json:"username"`
	UserID         string `db:"userid" json:"userid"`
	Description    string `db:"groupdescription" json:"groupdescription"`
	GroupName      string `db:"groupname" json:"groupname"`
	InvitationCode string `db:"invitationcode" json:"invitationcode"`
}

// MemberClassTime is a member's class slot used by the meeting planner.
type MemberClassTime struct {
	StartDate string `db:"startdate" json:"startdate"`
	StartTime int    `db:"starttime" json:"starttime"`
	EndTime   int    `db:"endtime" json:"endtime"`
}
