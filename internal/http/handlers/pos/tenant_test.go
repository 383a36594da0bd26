package pos

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/http/response"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/provider"
	"github.com/weipos/internal/repository"
	"github.com/weipos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTenantGuardTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:pos_tenant_guard_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.Product{},
		&models.ProductVariation{},
		&models.Aggregator{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewOrderItemRepository(db)
	productRepo := repository.NewProductRepository(db)
	eventRepo := repository.NewOrderEventRepository(db)
	aggregatorRepo := repository.NewAggregatorRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settingService := service.NewSettingService(settingRepo)
	totalsService := service.NewTotalsService(orderRepo, itemRepo, aggregatorRepo, settingService)
	itemService := service.NewOrderItemService(orderRepo, itemRepo, productRepo, eventRepo, totalsService, settingService)
	statusService := service.NewOrderStatusService(orderRepo, itemRepo, eventRepo, nil, nil, nil, nil)

	h := &Handler{Container: &provider.Container{
		OrderRepo:          orderRepo,
		OrderItemRepo:      itemRepo,
		OrderItemService:   itemService,
		OrderStatusService: statusService,
	}}
	return h, db
}

func seedTenantGuardOrder(t *testing.T, db *gorm.DB) (*models.Order, *models.OrderItem) {
	t.Helper()
	product := &models.Product{
		TenantID: 1,
		Name:     "house soup",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	order := &models.Order{
		OrderNo:       fmt.Sprintf("WPTENANT%d", time.Now().UnixNano()),
		TenantID:      1,
		BranchID:      1,
		Status:        constants.OrderStatusOpen,
		PaymentStatus: constants.PaymentStatusUnpaid,
		OrderType:     constants.OrderTypeDineIn,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:      order.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		UnitPrice:    product.Price,
		Quantity:     1,
		LineSubtotal: product.Price,
		LineTotal:    product.Price,
		State:        constants.ItemStateHeld,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	return order, item
}

func runTenantGuardRequest(t *testing.T, handle gin.HandlerFunc, method, path, body, paramKey string, paramValue uint, tenantID uint) response.Response {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Set("tenant_id", tenantID)
	c.Set("staff_id", uint(11))
	c.Params = gin.Params{{Key: paramKey, Value: fmt.Sprint(paramValue)}}
	handle(c)

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestUpdateItemRejectsForeignTenant(t *testing.T) {
	h, db := setupTenantGuardTest(t)
	_, item := seedTenantGuardOrder(t, db)

	resp := runTenantGuardRequest(t, h.UpdateItem, http.MethodPut,
		fmt.Sprintf("/pos/items/%d", item.ID), `{"quantity":5}`, "item_id", item.ID, 2)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}

	var reloaded models.OrderItem
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload item failed: %v", err)
	}
	if reloaded.Quantity != 1 {
		t.Fatalf("expected quantity untouched at 1, got %d", reloaded.Quantity)
	}

	resp = runTenantGuardRequest(t, h.UpdateItem, http.MethodPut,
		fmt.Sprintf("/pos/items/%d", item.ID), `{"quantity":5}`, "item_id", item.ID, 1)
	if resp.StatusCode != 0 {
		t.Fatalf("same tenant update want 0 got %d", resp.StatusCode)
	}
}

func TestTransitionOrderRejectsForeignTenant(t *testing.T) {
	h, db := setupTenantGuardTest(t)
	order, _ := seedTenantGuardOrder(t, db)

	resp := runTenantGuardRequest(t, h.TransitionOrder, http.MethodPost,
		fmt.Sprintf("/pos/orders/%d/status", order.ID), `{"target":"sent"}`, "id", order.ID, 2)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusOpen {
		t.Fatalf("expected status still open, got %s", reloaded.Status)
	}
}

func TestDeleteItemRejectsForeignTenant(t *testing.T) {
	h, db := setupTenantGuardTest(t)
	_, item := seedTenantGuardOrder(t, db)

	resp := runTenantGuardRequest(t, h.DeleteItem, http.MethodDelete,
		fmt.Sprintf("/pos/items/%d", item.ID), "", "item_id", item.ID, 2)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}

	var count int64
	if err := db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Count(&count).Error; err != nil {
		t.Fatalf("count item failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected item to survive foreign tenant delete")
	}
}

func TestListItemsRejectsForeignTenant(t *testing.T) {
	h, db := setupTenantGuardTest(t)
	order, _ := seedTenantGuardOrder(t, db)

	resp := runTenantGuardRequest(t, h.ListItems, http.MethodGet,
		fmt.Sprintf("/pos/orders/%d/items", order.ID), "", "id", order.ID, 2)
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, resp.StatusCode)
	}
}
