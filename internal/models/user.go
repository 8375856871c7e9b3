package models

import "time"

// User is the authenticated account as reported by /auth/me.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Credentials is the persisted client-side auth state. The access token is
// the only value shared across otherwise-independent parts of the client and
// is replaced or cleared wholesale, never partially mutated.
type Credentials struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email,omitempty"`
}

// UsageReport is the aggregate usage summary from /analytics/usage.
type UsageReport struct {
	PeriodStart      time.Time    `json:"period_start"`
	PeriodEnd        time.Time    `json:"period_end"`
	TotalTokensUsed  int          `json:"total_tokens_used"`
	TotalCost        float64      `json:"total_cost"`
	TotalChats       int          `json:"total_chats"`
	TotalMessages    int          `json:"total_messages"`
	FilesProcessed   int          `json:"files_processed"`
	AvgTokensPerMsg  float64      `json:"avg_tokens_per_message"`
	AvgCostPerMsg    float64      `json:"avg_cost_per_message"`
	DailyUsage       []DailyUsage `json:"daily_usage,omitempty"`
	MostExpensiveRef ChatRef      `json:"most_expensive_chat,omitempty"`
}

// DailyUsage is one day's slice of a usage report.
type DailyUsage struct {
	Date     string  `json:"date"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
	Messages int     `json:"messages"`
}

// ChatRef is a lightweight pointer to a chat inside analytics payloads.
type ChatRef struct {
	ChatID string  `json:"chat_id"`
	Title  string  `json:"title"`
	Cost   float64 `json:"cost"`
}

// AdminStatistics is the platform-wide rollup from /admin/statistics.
type AdminStatistics struct {
	TotalUsers    int     `json:"total_users"`
	ActiveUsers   int     `json:"active_users"`
	TotalChats    int     `json:"total_chats"`
	TotalMessages int     `json:"total_messages"`
	TotalTokens   int     `json:"total_tokens"`
	TotalCost     float64 `json:"total_cost"`
}
