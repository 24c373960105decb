package models

// DashboardStats feeds the admin dashboard counters.
type DashboardStats struct {
	Users            int `db:"users" json:"users"`
	PremiumUsers     int `db:"premium_users" json:"premium_users"`
	Admins           int `db:"admins" json:"admins"`
	Tutorials        int `db:"tutorials" json:"tutorials"`
	FreeTutorials    int `db:"free_tutorials" json:"free_tutorials"`
	PremiumTutorials int `db:"premium_tutorials" json:"premium_tutorials"`
	Examples         int `db:"examples" json:"examples"`
}
