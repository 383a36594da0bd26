package service

import (
	"testing"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/repository"
)

func TestSettingFallsBackToDefault(t *testing.T) {
	db := setupServiceTest(t, "setting_default")
	svc := NewSettingService(repository.NewSettingRepository(db))

	if got := svc.Get(1, "missing_key", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for missing key, got %s", got)
	}
	if got := svc.GetFloat(1, constants.SettingKeyTaxPercent, 7.5); got != 7.5 {
		t.Fatalf("expected default float, got %v", got)
	}

	setTestSetting(t, db, 1, constants.SettingKeyTaxPercent, "5")
	if got := svc.GetFloat(1, constants.SettingKeyTaxPercent, 7.5); got != 5 {
		t.Fatalf("expected stored value 5, got %v", got)
	}
	// 其他租户不共享配置
	if got := svc.GetFloat(2, constants.SettingKeyTaxPercent, 7.5); got != 7.5 {
		t.Fatalf("expected tenant isolation, got %v", got)
	}
}

func TestSettingParseFailureFallsBack(t *testing.T) {
	db := setupServiceTest(t, "setting_parse")
	svc := NewSettingService(repository.NewSettingRepository(db))

	setTestSetting(t, db, 1, constants.SettingKeyServicePercent, "not-a-number")
	if got := svc.GetFloat(1, constants.SettingKeyServicePercent, 10); got != 10 {
		t.Fatalf("expected default on parse failure, got %v", got)
	}
	setTestSetting(t, db, 1, constants.SettingKeyLockTimeoutSeconds, "  ")
	if got := svc.GetInt(1, constants.SettingKeyLockTimeoutSeconds, 120); got != 120 {
		t.Fatalf("expected default on blank value, got %v", got)
	}
}

func TestSettingUpdateOverwrites(t *testing.T) {
	db := setupServiceTest(t, "setting_update")
	svc := NewSettingService(repository.NewSettingRepository(db))

	if err := svc.Update(1, constants.SettingKeyTaxPercent, "5"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.Update(1, constants.SettingKeyTaxPercent, "8"); err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if got := svc.Get(1, constants.SettingKeyTaxPercent, ""); got != "8" {
		t.Fatalf("expected updated value 8, got %s", got)
	}
}

func TestClampLockTimeoutBounds(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, constants.LockTimeoutMinSeconds},
		{29, constants.LockTimeoutMinSeconds},
		{30, 30},
		{120, 120},
		{600, 600},
		{601, constants.LockTimeoutMaxSeconds},
	}
	for _, c := range cases {
		if got := ClampLockTimeout(c.in); got != c.want {
			t.Fatalf("clamp(%d) want %d got %d", c.in, c.want, got)
		}
	}
}

func TestGetLockTimeoutSecondsClampsTenantValue(t *testing.T) {
	db := setupServiceTest(t, "setting_lock_timeout")
	svc := NewSettingService(repository.NewSettingRepository(db))

	if got := svc.GetLockTimeoutSeconds(1, 120); got != 120 {
		t.Fatalf("expected default 120, got %d", got)
	}
	setTestSetting(t, db, 1, constants.SettingKeyLockTimeoutSeconds, "5")
	if got := svc.GetLockTimeoutSeconds(1, 120); got != constants.LockTimeoutMinSeconds {
		t.Fatalf("expected tenant value clamped to min, got %d", got)
	}
}
