package models

import "time"

// ContentCounts holds row totals for each public content table.
type ContentCounts struct {
	Menus        int `db:"menus" json:"menus"`
	PageSections int `db:"page_sections" json:"page_sections"`
	Programs     int `db:"programs" json:"programs"`
	News         int `db:"news" json:"news"`
	Teachers     int `db:"teachers" json:"teachers"`
	Events       int `db:"events" json:"events"`
	Gallery      int `db:"gallery" json:"gallery"`
	Achievements int `db:"achievements" json:"achievements"`
}

// DashboardSummary is the admin landing page aggregate.
type DashboardSummary struct {
	Content     ContentCounts            `json:"content"`
	Submissions map[SubmissionStatus]int `json:"submissions"`
	TotalPPDB   int                      `json:"total_ppdb"`
	GeneratedAt time.Time                `json:"generated_at"`
}
