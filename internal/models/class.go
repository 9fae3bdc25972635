package models

// Class is a recurring or one-off scheduled class session. Date columns are
// selected as YYYY-MM-DD strings so the timetable ingestion owns parsing and
// its skip-on-unparsable policy; times are minutes since UTC midnight.
type Class struct {
	ID         string `db:"classid" json:"classid"`
	UserID     string `db:"userid" json:"userid"`
	ModuleName string `db:"modulename" json:"modulename"`
	ClassType  string `db:"classtype" json:"classtype"`
	Location   string `db:"classlocation" json:"classlocation"`
	StartDate  string `db:"startdate" json:"startdate"`
	StartTime  int    `db:"starttime" json:"starttime"`
	EndDate    string `db:"enddate" json:"enddate"`
	EndTime    int    `db:"endtime" json:"endtime"`
}
