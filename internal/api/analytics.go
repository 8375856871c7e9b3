package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atlasprime/atlas/internal/models"
)

// RealtimeUsage fetches the live usage snapshot for one chat. This is the
// usage telemetry poller's target; it is polled, never pushed.
func (c *Client) RealtimeUsage(ctx context.Context, chatID string) (*models.UsageSnapshot, error) {
	var snapshot models.UsageSnapshot
	if err := c.Do(ctx, http.MethodGet, "/analytics/realtime/"+chatID, nil, &snapshot); err != nil {
		return nil, err
	}
	if snapshot.ChatID == "" {
		snapshot.ChatID = chatID
	}
	if snapshot.WarningLevel == "" {
		snapshot.WarningLevel = models.WarningNone
	}
	return &snapshot, nil
}

// UsageReport fetches the aggregate usage summary for the account.
func (c *Client) UsageReport(ctx context.Context, periodDays int) (*models.UsageReport, error) {
	query := map[string]string{}
	if periodDays > 0 {
		query["period_days"] = strconv.Itoa(periodDays)
	}

	var wrapper struct {
		Usage models.UsageReport `json:"usage"`
	}
	if err := c.Do(ctx, http.MethodGet, queryPath("/analytics/usage", query), nil, &wrapper); err != nil {
		return nil, err
	}
	return &wrapper.Usage, nil
}

// AdminUsers lists platform accounts. Requires an admin credential.
func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.Do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminStatistics fetches the platform-wide usage rollup.
func (c *Client) AdminStatistics(ctx context.Context) (*models.AdminStatistics, error) {
	var stats models.AdminStatistics
	if err := c.Do(ctx, http.MethodGet, "/admin/statistics", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
