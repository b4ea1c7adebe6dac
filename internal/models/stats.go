package models

// AdminStats summarises platform volume for the admin dashboard.
type AdminStats struct {
	Users         int `json:"users"`
	Subjects      int `json:"subjects"`
	Boards        int `json:"boards"`
	Materials     int `json:"materials"`
	Payments      int `json:"payments"`
	Subscriptions int `json:"subscriptions"`
	Revenue       int `json:"revenue"`
}
