package dto

// DashboardQuery controls how the admin dashboard summary is resolved.
type DashboardQuery struct {
	Refresh bool `form:"refresh"`
}
