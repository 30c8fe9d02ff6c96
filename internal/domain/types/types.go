// Package types contains common types used across the application
package types

// Snapshot is the full set of display-ready values derived from the feed.
// Every field is a plain string ready for rendering; the HTTP API serves
// it verbatim.
type Snapshot struct {
	Connected      bool   `json:"connected"`
	RunDescription string `json:"run_description"`
	RunActive      bool   `json:"run_active"`
	Qualifying     bool   `json:"qualifying"`
	Flag           string `json:"flag"`
	Laps           string `json:"laps"`
	LapsToGo       string `json:"laps_to_go"`
	TimeRemaining  string `json:"time_remaining"`
	TimeOfDay      string `json:"time_of_day"`
	Elapsed        string `json:"elapsed"`
	OverallLeaders string `json:"overall_leaders"`
	ClassLeaders   string `json:"class_leaders"`
	Message        string `json:"message"`
	Error          string `json:"error"`
	ServerVersion  string `json:"server_version"`
	Timezone       string `json:"timezone"`
}
