package model

type DashboardStats struct {
	TotalPosts        int64 `json:"total_posts"`
	ScheduledPosts    int64 `json:"scheduled_posts"`
	PublishedPosts    int64 `json:"published_posts"`
	TotalEngagement   int64 `json:"total_engagement"`
	ConnectedAccounts int64 `json:"connected_accounts"`
}

type PlatformStat struct {
	Platform Platform `json:"platform"`
	Count    int64    `json:"count"`
}

type Dashboard struct {
	Stats         DashboardStats `json:"stats"`
	RecentPosts   []Post         `json:"recent_posts"`
	PlatformStats []PlatformStat `json:"platform_stats"`
}
