package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CollaboratorClient 协作方数据客户端接口（打卡日志、日历聚合）
// 状态重算前由服务层调用，拉取失败只降级为空输入，不影响重算本身。
type CollaboratorClient interface {
	// GetCheckinTags 获取某日的打卡标签集合
	GetCheckinTags(ctx context.Context, userID, date string) (domain.CheckinTagSet, error)

	// GetCalendarDensity 获取某日的日历负载摘要
	GetCalendarDensity(ctx context.Context, userID, date string) (*domain.CalendarDensitySummary, error)
}

// restyCollaboratorClient HTTP 实现
type restyCollaboratorClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewCollaboratorClient 创建协作方客户端
// 重试策略放在这一层（引擎内部不做任何重试）。
func NewCollaboratorClient(baseURL string, logger *zap.Logger) CollaboratorClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &restyCollaboratorClient{
		httpClient: client,
		logger:     logger,
	}
}

// checkinTagsResponse 打卡日志服务的响应
type checkinTagsResponse struct {
	Tags []string `json:"tags"`
}

func (c *restyCollaboratorClient) GetCheckinTags(ctx context.Context, userID, date string) (domain.CheckinTagSet, error) {
	var out checkinTagsResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/internal/checkins/%s/%s/tags", userID, date))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkin tags: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("checkin service returned status %d", resp.StatusCode())
	}

	tags := make(domain.CheckinTagSet, 0, len(out.Tags))
	for _, tag := range out.Tags {
		tags = append(tags, domain.CheckinTag(tag))
	}
	return tags, nil
}

func (c *restyCollaboratorClient) GetCalendarDensity(ctx context.Context, userID, date string) (*domain.CalendarDensitySummary, error) {
	var out domain.CalendarDensitySummary
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/internal/calendar/%s/%s/density", userID, date))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar density: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("calendar service returned status %d", resp.StatusCode())
	}
	return &out, nil
}
