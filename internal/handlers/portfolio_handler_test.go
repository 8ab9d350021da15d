package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tradefolio/internal/errors"
	"tradefolio/internal/models"
	"tradefolio/internal/pagination"
	"tradefolio/internal/services"
)

type mockPortfolioService struct {
	getSummaryFn     func(userID string) (*services.PortfolioSummary, error)
	getPerformanceFn func(userID string) (*services.PortfolioPerformance, error)
	takeSnapshotFn   func(userID string) (*models.PortfolioSnapshot, error)
	getSnapshotsFn   func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error)
}

func (m *mockPortfolioService) GetSummary(userID string) (*services.PortfolioSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID)
	}
	return &services.PortfolioSummary{}, nil
}

func (m *mockPortfolioService) GetPerformance(userID string) (*services.PortfolioPerformance, error) {
	if m.getPerformanceFn != nil {
		return m.getPerformanceFn(userID)
	}
	return &services.PortfolioPerformance{}, nil
}

func (m *mockPortfolioService) TakeSnapshot(userID string) (*models.PortfolioSnapshot, error) {
	if m.takeSnapshotFn != nil {
		return m.takeSnapshotFn(userID)
	}
	return &models.PortfolioSnapshot{}, nil
}

func (m *mockPortfolioService) GetSnapshots(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
	if m.getSnapshotsFn != nil {
		return m.getSnapshotsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.PortfolioSnapshot{}, 1, 20, 0)
	return &resp, nil
}

func setupPortfolioRouter(handler *PortfolioHandler) *gin.Engine {
	r := gin.New()
	grp := r.Group("/portfolio", injectUserID(testUserID))
	grp.GET("/summary", handler.GetSummary)
	grp.GET("/performance", handler.GetPerformance)
	grp.POST("/snapshots", handler.TakeSnapshot)
	grp.GET("/snapshots", handler.GetSnapshots)
	return r
}

func TestPortfolioHandler_GetSummary(t *testing.T) {
	t.Run("returns summary with all totals", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			getSummaryFn: func(userID string) (*services.PortfolioSummary, error) {
				return &services.PortfolioSummary{
					TotalBalance:           decimal.NewFromInt(1000),
					TotalInvested:          decimal.NewFromInt(700),
					TotalCurrentValue:      decimal.NewFromInt(750),
					TotalProfitLoss:        decimal.NewFromInt(50),
					TotalProfitLossPercent: decimal.NewFromFloat(7.14),
					HoldingsCount:          2,
					TransactionsCount:      5,
				}, nil
			},
		}
		handler := NewPortfolioHandler(portfolioSvc, &mockAuditService{})
		r := setupPortfolioRouter(handler)

		rec := doRequest(r, "GET", "/portfolio/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_balance"] != "1000" {
			t.Errorf("expected total_balance 1000, got %v", result["total_balance"])
		}
		if result["total_profit_loss"] != "50" {
			t.Errorf("expected total_profit_loss 50, got %v", result["total_profit_loss"])
		}
		if result["holdings_count"].(float64) != 2 {
			t.Errorf("expected holdings_count 2, got %v", result["holdings_count"])
		}
	})

	t.Run("returns 404 for unknown user", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			getSummaryFn: func(userID string) (*services.PortfolioSummary, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		handler := NewPortfolioHandler(portfolioSvc, &mockAuditService{})
		r := setupPortfolioRouter(handler)

		rec := doRequest(r, "GET", "/portfolio/summary", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}

func TestPortfolioHandler_GetPerformance(t *testing.T) {
	t.Run("returns ranked performances", func(t *testing.T) {
		best := services.HoldingPerformance{
			Stock:             "AAPL",
			ProfitLoss:        decimal.NewFromInt(50),
			ProfitLossPercent: decimal.NewFromInt(25),
		}
		worst := services.HoldingPerformance{
			Stock:             "TSLA",
			ProfitLoss:        decimal.NewFromInt(-50),
			ProfitLossPercent: decimal.NewFromInt(-10),
		}
		portfolioSvc := &mockPortfolioService{
			getPerformanceFn: func(userID string) (*services.PortfolioPerformance, error) {
				return &services.PortfolioPerformance{
					TotalReturn:     decimal.Zero,
					BestPerformer:   &best,
					WorstPerformer:  &worst,
					AllPerformances: []services.HoldingPerformance{best, worst},
				}, nil
			},
		}
		handler := NewPortfolioHandler(portfolioSvc, &mockAuditService{})
		r := setupPortfolioRouter(handler)

		rec := doRequest(r, "GET", "/portfolio/performance", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		bestResp := result["best_performer"].(map[string]interface{})
		if bestResp["stock"] != "AAPL" {
			t.Errorf("expected best performer AAPL, got %v", bestResp["stock"])
		}
		all := result["all_performances"].([]interface{})
		if len(all) != 2 {
			t.Errorf("expected 2 performances, got %d", len(all))
		}
	})

	t.Run("empty portfolio has nil performers", func(t *testing.T) {
		handler := NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{})
		r := setupPortfolioRouter(handler)

		rec := doRequest(r, "GET", "/portfolio/performance", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["best_performer"] != nil {
			t.Errorf("expected nil best_performer, got %v", result["best_performer"])
		}
	})
}

func TestPortfolioHandler_Snapshots(t *testing.T) {
	t.Run("take snapshot returns 201", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			takeSnapshotFn: func(userID string) (*models.PortfolioSnapshot, error) {
				return &models.PortfolioSnapshot{
					ID:            "00000000-0000-0000-0000-000000000009",
					UserID:        userID,
					CashBalance:   decimal.NewFromInt(500),
					HoldingsValue: decimal.NewFromInt(250),
					TotalValue:    decimal.NewFromInt(750),
				}, nil
			},
		}
		handler := NewPortfolioHandler(portfolioSvc, &mockAuditService{})
		r := setupPortfolioRouter(handler)

		rec := doRequest(r, "POST", "/portfolio/snapshots", "")

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		snapshot := result["snapshot"].(map[string]interface{})
		if snapshot["total_value"] != "750" {
			t.Errorf("expected total_value 750, got %v", snapshot["total_value"])
		}
	})

	t.Run("list snapshots passes pagination through", func(t *testing.T) {
		var gotPage pagination.PageRequest
		portfolioSvc := &mockPortfolioService{
			getSnapshotsFn: func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
				gotPage = page
				resp := pagination.NewPageResponse([]models.PortfolioSnapshot{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		handler := NewPortfolioHandler(portfolioSvc, &mockAuditService{})
		r := setupPortfolioRouter(handler)

		rec := doRequest(r, "GET", "/portfolio/snapshots?page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2 size 5, got %+v", gotPage)
		}
	})
}
