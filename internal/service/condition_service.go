package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/engine"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/invalidation"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/repository"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvalidationPublisher 失效事件发布接口（用于测试和扩展）
type InvalidationPublisher interface {
	PublishStale(ctx context.Context, eventType, userID, date string) error
}

// EstimateSleepRequest 睡眠窗口推算请求
type EstimateSleepRequest struct {
	UserID  string
	Date    string // YYYY-MM-DD
	Signals domain.RawSignalSet
}

// CorrectSleepRequest 睡眠修正请求
type CorrectSleepRequest struct {
	UserID   string
	Date     string
	Bedtime  time.Time
	Waketime time.Time
}

// CorrectSleepResponse 睡眠修正结果
type CorrectSleepResponse struct {
	Record   *domain.SleepRecord
	Delta    *engine.CorrectionDelta // 与推算基线的差异（仅首次修正时存在）
	Warnings []string
}

// RecomputeConditionRequest 状态重算请求
// Checkins/Calendar 可由调用方直接提供；为 nil 时向协作方拉取。
type RecomputeConditionRequest struct {
	UserID   string
	Date     string
	Checkins *domain.CheckinTagSet
	Calendar *domain.CalendarDensitySummary
}

// RecomputeConditionResponse 状态重算结果
type RecomputeConditionResponse struct {
	Condition *domain.DailyCondition
	Drivers   domain.ConditionDrivers
}

// ConditionService 睡眠与状态推算服务接口
type ConditionService interface {
	// EstimateAndPersistSleep 推算并持久化某日的睡眠窗口
	EstimateAndPersistSleep(ctx context.Context, req EstimateSleepRequest) (*domain.SleepRecord, error)

	// CorrectSleep 记录用户对睡眠窗口的修正
	CorrectSleep(ctx context.Context, req CorrectSleepRequest) (*CorrectSleepResponse, error)

	// RecomputeCondition 重算某日的状态与能量曲线
	RecomputeCondition(ctx context.Context, req RecomputeConditionRequest) (*RecomputeConditionResponse, error)
}

// conditionService 实现
type conditionService struct {
	sleepRepo     *repository.SleepRecordsRepository
	conditionRepo *repository.DailyConditionsRepository
	kv            store.KV
	collaborators CollaboratorClient // 可为 nil（未配置协作方地址）
	publisher     InvalidationPublisher
	historyDays   int
	travelPrefix  string
	logger        *zap.Logger
}

// NewConditionService 创建 ConditionService 实例
func NewConditionService(
	sleepRepo *repository.SleepRecordsRepository,
	conditionRepo *repository.DailyConditionsRepository,
	kv store.KV,
	collaborators CollaboratorClient,
	publisher InvalidationPublisher,
	historyDays int,
	travelPrefix string,
	logger *zap.Logger,
) ConditionService {
	if historyDays <= 0 {
		historyDays = 7
	}
	return &conditionService{
		sleepRepo:     sleepRepo,
		conditionRepo: conditionRepo,
		kv:            kv,
		collaborators: collaborators,
		publisher:     publisher,
		historyDays:   historyDays,
		travelPrefix:  travelPrefix,
		logger:        logger,
	}
}

// EstimateAndPersistSleep 推算睡眠窗口并写库
// 写入是原子条件覆盖：该日已被用户修正时不写，返回现有记录。
func (s *conditionService) EstimateAndPersistSleep(ctx context.Context, req EstimateSleepRequest) (*domain.SleepRecord, error) {
	if req.UserID == "" || req.Date == "" {
		return nil, fmt.Errorf("user_id and date are required")
	}

	recent, err := s.sleepRepo.GetRecentSleepRecords(ctx, req.UserID, req.Date, s.historyDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sleep records: %w", err)
	}

	candidate := engine.EstimateSleepWindow(req.UserID, req.Date, req.Signals, recent)
	candidate.RecordID = uuid.New().String()

	stored, written, err := s.sleepRepo.UpsertEstimated(ctx, &candidate)
	if err != nil {
		return nil, err
	}

	if written {
		s.publishStale(ctx, invalidation.EventSleepUpdated, req.UserID, req.Date)
	} else {
		s.logger.Info("Estimation skipped: record already corrected by user",
			zap.String("user_id", req.UserID),
			zap.String("date", req.Date),
		)
	}

	s.logger.Info("Sleep window estimated",
		zap.String("user_id", req.UserID),
		zap.String("date", req.Date),
		zap.Int("confidence_stars", stored.ConfidenceStars),
		zap.Bool("written", written),
	)
	return stored, nil
}

// CorrectSleep 校验并记录用户修正
// 幂等：提交与已存储修正完全相同的值时不再写库、不再发失效事件。
func (s *conditionService) CorrectSleep(ctx context.Context, req CorrectSleepRequest) (*CorrectSleepResponse, error) {
	if req.UserID == "" || req.Date == "" {
		return nil, fmt.Errorf("user_id and date are required")
	}

	prior, err := s.sleepRepo.GetSleepRecord(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, err
	}

	result, err := engine.ApplySleepCorrection(req.UserID, req.Date, req.Bedtime, req.Waketime, prior)
	if err != nil {
		return nil, err
	}

	if prior.IsCorrected() &&
		prior.Bedtime != nil && prior.Bedtime.Equal(req.Bedtime) &&
		prior.Waketime != nil && prior.Waketime.Equal(req.Waketime) {
		// 重复提交相同修正：存储状态不变
		return &CorrectSleepResponse{Record: prior, Delta: result.Delta, Warnings: result.Warnings}, nil
	}

	record := result.Record
	if prior != nil {
		record.RecordID = prior.RecordID
	} else {
		record.RecordID = uuid.New().String()
	}

	stored, err := s.sleepRepo.UpsertCorrected(ctx, &record)
	if err != nil {
		return nil, err
	}

	// 依赖旧睡眠窗口的派生产物全部视为过期
	s.publishStale(ctx, invalidation.EventSleepCorrected, req.UserID, req.Date)

	s.logger.Info("Sleep record corrected by user",
		zap.String("user_id", req.UserID),
		zap.String("date", req.Date),
		zap.Int("warnings", len(result.Warnings)),
	)
	return &CorrectSleepResponse{Record: stored, Delta: result.Delta, Warnings: result.Warnings}, nil
}

// RecomputeCondition 重算当日状态
// 纯函数整体重算，任何上游输入变化后重复调用都安全。
func (s *conditionService) RecomputeCondition(ctx context.Context, req RecomputeConditionRequest) (*RecomputeConditionResponse, error) {
	if req.UserID == "" || req.Date == "" {
		return nil, fmt.Errorf("user_id and date are required")
	}

	sleep, err := s.sleepRepo.GetSleepRecord(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, err
	}

	tags := s.resolveCheckins(ctx, req)
	calendar := s.resolveCalendar(ctx, req)
	travelEnabled := s.travelModeEnabled(ctx, req.UserID, req.Date)

	state, score, drivers := engine.ScoreCondition(sleep, tags, calendar)

	var bedtime *time.Time
	var duration *int
	if sleep != nil {
		bedtime = sleep.Bedtime
		duration = sleep.DurationMinutes
	}
	curve := engine.GenerateEnergyCurve(state, bedtime, duration, travelEnabled)

	condition := &domain.DailyCondition{
		ConditionID:   uuid.New().String(),
		UserID:        req.UserID,
		Date:          req.Date,
		State:         state,
		ScoreInternal: score,
		EnergyCurve:   curve,
		Drivers:       drivers,
	}

	stored, err := s.conditionRepo.Upsert(ctx, condition)
	if err != nil {
		return nil, err
	}

	s.publishStale(ctx, invalidation.EventConditionUpdated, req.UserID, req.Date)

	s.logger.Info("Daily condition recomputed",
		zap.String("user_id", req.UserID),
		zap.String("date", req.Date),
		zap.String("state", string(stored.State)),
		zap.Int("score", stored.ScoreInternal),
	)
	return &RecomputeConditionResponse{Condition: stored, Drivers: stored.Drivers}, nil
}

// resolveCheckins 取打卡标签：请求内联值优先，其次协作方，失败降级为空
func (s *conditionService) resolveCheckins(ctx context.Context, req RecomputeConditionRequest) domain.CheckinTagSet {
	if req.Checkins != nil {
		return *req.Checkins
	}
	if s.collaborators == nil {
		return nil
	}
	tags, err := s.collaborators.GetCheckinTags(ctx, req.UserID, req.Date)
	if err != nil {
		s.logger.Warn("Failed to fetch checkin tags, scoring without them",
			zap.String("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return nil
	}
	return tags
}

// resolveCalendar 取日历负载：同 resolveCheckins 的降级策略
func (s *conditionService) resolveCalendar(ctx context.Context, req RecomputeConditionRequest) domain.CalendarDensitySummary {
	if req.Calendar != nil {
		return *req.Calendar
	}
	if s.collaborators == nil {
		return domain.CalendarDensitySummary{}
	}
	summary, err := s.collaborators.GetCalendarDensity(ctx, req.UserID, req.Date)
	if err != nil || summary == nil {
		if err != nil {
			s.logger.Warn("Failed to fetch calendar density, scoring without it",
				zap.String("user_id", req.UserID),
				zap.String("date", req.Date),
				zap.Error(err),
			)
		}
		return domain.CalendarDensitySummary{}
	}
	return *summary
}

// travelModeEnabled 读取旅行模式标记（Redis 键，缺失即未启用）
func (s *conditionService) travelModeEnabled(ctx context.Context, userID, date string) bool {
	if s.kv == nil {
		return false
	}
	key := fmt.Sprintf("%s%s:travel:%s", s.travelPrefix, userID, date)
	val, err := s.kv.Get(ctx, key)
	if err != nil {
		if err != store.ErrMiss {
			s.logger.Warn("Failed to read travel mode flag",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return false
	}
	return val == "true" || val == "1"
}

// publishStale 发布失效事件（尽力而为：发布失败只记日志，重算随时可重复）
func (s *conditionService) publishStale(ctx context.Context, eventType, userID, date string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStale(ctx, eventType, userID, date); err != nil {
		s.logger.Error("Failed to publish invalidation event",
			zap.String("event_type", eventType),
			zap.String("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
}
