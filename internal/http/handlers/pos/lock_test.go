package pos

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/weipos/internal/config"
	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/http/response"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/provider"
	"github.com/weipos/internal/repository"
	"github.com/weipos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLockHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:pos_lock_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemVariation{},
		&models.OrderDiscount{},
		&models.OrderEvent{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewOrderEventRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	h := &Handler{Container: &provider.Container{
		Config: &config.Config{
			Order: config.OrderConfig{LockTimeoutSeconds: 120},
		},
		OrderRepo:        orderRepo,
		SettingService:   service.NewSettingService(settingRepo),
		OrderLockService: service.NewOrderLockService(orderRepo, eventRepo),
	}}
	return h, db
}

func createLockHandlerOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       fmt.Sprintf("WPLOCK%d", time.Now().UnixNano()),
		TenantID:      1,
		BranchID:      1,
		Status:        constants.OrderStatusOpen,
		PaymentStatus: constants.PaymentStatusUnpaid,
		OrderType:     constants.OrderTypeDineIn,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func newLockContext(t *testing.T, method, path, body string, orderID, tenantID, staffID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Set("tenant_id", tenantID)
	c.Set("staff_id", staffID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(orderID)}}
	return c, w
}

func decodeLockResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestAcquireLockHandler(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	path := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, w := newLockContext(t, http.MethodPost, path, "", order.ID, 1, 11)
	h.AcquireLock(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	resp := decodeLockResponse(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if resp.Msg != "lock acquired" {
		t.Fatalf("msg want lock acquired got %q", resp.Msg)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data want object got %T", resp.Data)
	}
	if timeout, _ := data["timeout_seconds"].(float64); timeout != 120 {
		t.Fatalf("timeout_seconds want 120 got %v", data["timeout_seconds"])
	}

	// 他人抢占返回 423
	c, w = newLockContext(t, http.MethodPost, path, "", order.ID, 1, 22)
	h.AcquireLock(c)
	resp = decodeLockResponse(t, w)
	if resp.StatusCode != response.CodeLocked {
		t.Fatalf("status_code want %d got %d", response.CodeLocked, resp.StatusCode)
	}
}

func TestAcquireLockHandlerClampsRequestedTimeout(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	path := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, w := newLockContext(t, http.MethodPost, path, `{"timeout_seconds":5}`, order.ID, 1, 11)
	h.AcquireLock(c)

	resp := decodeLockResponse(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data want object got %T", resp.Data)
	}
	if timeout, _ := data["timeout_seconds"].(float64); timeout != float64(constants.LockTimeoutMinSeconds) {
		t.Fatalf("timeout_seconds want %d got %v", constants.LockTimeoutMinSeconds, data["timeout_seconds"])
	}
}

func TestAcquireLockHandlerRequiresStaffContext(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/pos/orders/1/lock", strings.NewReader(""))
	c.Set("tenant_id", uint(1))
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(order.ID)}}
	h.AcquireLock(c)

	resp := decodeLockResponse(t, w)
	if resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("status_code want %d got %d", response.CodeUnauthorized, resp.StatusCode)
	}
}

func TestAcquireLockHandlerRejectsForeignTenant(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	path := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, w := newLockContext(t, http.MethodPost, path, "", order.ID, 2, 11)
	h.AcquireLock(c)

	resp := decodeLockResponse(t, w)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.LockedBy != nil {
		t.Fatalf("expected foreign tenant request to leave lock untouched")
	}
}

func TestForceReleaseLockHandlerRejectsForeignTenant(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	lockPath := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, _ := newLockContext(t, http.MethodPost, lockPath, "", order.ID, 1, 11)
	h.AcquireLock(c)

	forcePath := fmt.Sprintf("/pos/orders/%d/lock/force", order.ID)
	c, w := newLockContext(t, http.MethodDelete, forcePath, "", order.ID, 2, 22)
	c.Request.Header.Set("X-Staff-Role", "manager")
	h.ForceReleaseLock(c)

	resp := decodeLockResponse(t, w)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.LockedBy == nil || *reloaded.LockedBy != 11 {
		t.Fatalf("expected lock still held by staff 11")
	}
}

func TestReleaseLockHandlerOnlyHolder(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	lockPath := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, _ := newLockContext(t, http.MethodPost, lockPath, "", order.ID, 1, 11)
	h.AcquireLock(c)

	// 非持有者释放返回 403
	c, w := newLockContext(t, http.MethodDelete, lockPath, "", order.ID, 1, 22)
	h.ReleaseLock(c)
	resp := decodeLockResponse(t, w)
	if resp.StatusCode != response.CodeForbidden {
		t.Fatalf("status_code want %d got %d", response.CodeForbidden, resp.StatusCode)
	}

	c, w = newLockContext(t, http.MethodDelete, lockPath, "", order.ID, 1, 11)
	h.ReleaseLock(c)
	resp = decodeLockResponse(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if resp.Msg != "lock released" {
		t.Fatalf("msg want lock released got %q", resp.Msg)
	}
}

func TestForceReleaseLockHandlerRequiresManagerRole(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	lockPath := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, _ := newLockContext(t, http.MethodPost, lockPath, "", order.ID, 1, 11)
	h.AcquireLock(c)

	forcePath := fmt.Sprintf("/pos/orders/%d/lock/force", order.ID)
	c, w := newLockContext(t, http.MethodDelete, forcePath, "", order.ID, 1, 22)
	h.ForceReleaseLock(c)
	resp := decodeLockResponse(t, w)
	if resp.StatusCode != response.CodeForbidden {
		t.Fatalf("status_code want %d got %d", response.CodeForbidden, resp.StatusCode)
	}

	c, w = newLockContext(t, http.MethodDelete, forcePath, "", order.ID, 1, 22)
	c.Request.Header.Set("X-Staff-Role", "manager")
	h.ForceReleaseLock(c)
	resp = decodeLockResponse(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if resp.Msg != "lock force released" {
		t.Fatalf("msg want lock force released got %q", resp.Msg)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.LockedBy != nil {
		t.Fatalf("expected lock cleared after force release")
	}
}

func TestGetLockStatusHandler(t *testing.T) {
	h, db := setupLockHandlerTest(t)
	order := createLockHandlerOrder(t, db)

	statusPath := fmt.Sprintf("/pos/orders/%d/lock", order.ID)
	c, w := newLockContext(t, http.MethodGet, statusPath, "", order.ID, 1, 11)
	h.GetLockStatus(c)
	resp := decodeLockResponse(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data want object got %T", resp.Data)
	}
	if locked, _ := data["locked"].(bool); locked {
		t.Fatalf("expected unlocked order")
	}

	c, _ = newLockContext(t, http.MethodPost, statusPath, "", order.ID, 1, 11)
	h.AcquireLock(c)

	c, w = newLockContext(t, http.MethodGet, statusPath, "", order.ID, 1, 11)
	h.GetLockStatus(c)
	resp = decodeLockResponse(t, w)
	data, ok = resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data want object got %T", resp.Data)
	}
	if locked, _ := data["locked"].(bool); !locked {
		t.Fatalf("expected locked order")
	}
	if lockedBy, _ := data["locked_by"].(float64); lockedBy != 11 {
		t.Fatalf("locked_by want 11 got %v", data["locked_by"])
	}
}
