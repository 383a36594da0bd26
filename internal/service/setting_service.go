package service

import (
	"strconv"
	"strings"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/repository"

	"gorm.io/gorm"
)

// SettingService 租户配置服务；读取失败时回退到调用方默认值
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建配置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// WithTx 绑定事务
func (s *SettingService) WithTx(tx *gorm.DB) *SettingService {
	if tx == nil {
		return s
	}
	return &SettingService{repo: s.repo.WithTx(tx)}
}

// Get 获取租户配置值；记录不存在或查询失败时返回默认值
func (s *SettingService) Get(tenantID uint, key, defaultValue string) string {
	if s == nil || s.repo == nil {
		return defaultValue
	}
	setting, err := s.repo.GetByKey(tenantID, key)
	if err != nil {
		logger.Warnw("setting_read_failed", "tenant_id", tenantID, "key", key, "error", err)
		return defaultValue
	}
	if setting == nil {
		return defaultValue
	}
	value := strings.TrimSpace(setting.Value)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetFloat 获取数值型配置；解析失败时返回默认值
func (s *SettingService) GetFloat(tenantID uint, key string, defaultValue float64) float64 {
	raw := s.Get(tenantID, key, "")
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warnw("setting_parse_failed", "tenant_id", tenantID, "key", key, "value", raw, "error", err)
		return defaultValue
	}
	return parsed
}

// GetInt 获取整数型配置；解析失败时返回默认值
func (s *SettingService) GetInt(tenantID uint, key string, defaultValue int) int {
	raw := s.Get(tenantID, key, "")
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warnw("setting_parse_failed", "tenant_id", tenantID, "key", key, "value", raw, "error", err)
		return defaultValue
	}
	return parsed
}

// Update 写入租户配置
func (s *SettingService) Update(tenantID uint, key, value string) error {
	_, err := s.repo.Upsert(tenantID, key, value)
	return err
}

// GetLockTimeoutSeconds 获取支付锁超时秒数，限制在允许区间内
func (s *SettingService) GetLockTimeoutSeconds(tenantID uint, defaultValue int) int {
	timeout := s.GetInt(tenantID, constants.SettingKeyLockTimeoutSeconds, defaultValue)
	return ClampLockTimeout(timeout)
}

// ClampLockTimeout 将锁超时限制在允许区间内
func ClampLockTimeout(seconds int) int {
	if seconds < constants.LockTimeoutMinSeconds {
		return constants.LockTimeoutMinSeconds
	}
	if seconds > constants.LockTimeoutMaxSeconds {
		return constants.LockTimeoutMaxSeconds
	}
	return seconds
}
