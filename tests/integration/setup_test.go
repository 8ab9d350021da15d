package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradefolio/internal/handlers"
	"tradefolio/internal/logger"
	"tradefolio/internal/middleware"
	"tradefolio/internal/models"
	"tradefolio/internal/services"
	"tradefolio/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.LedgerEntry{},
		&models.Holding{},
		&models.PortfolioSnapshot{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	holdingService := services.NewHoldingService(db)
	portfolioService := services.NewPortfolioService(db, userService)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	transactions := protected.Group("/transactions")
	transactions.POST("", ledgerHandler.CreateTransaction)
	transactions.GET("", ledgerHandler.GetTransactions)
	transactions.GET("/recent", ledgerHandler.GetRecentTransactions)
	transactions.GET("/summary", ledgerHandler.GetTransactionSummary)
	transactions.GET("/:id", ledgerHandler.GetTransactionByID)

	holdings := protected.Group("/holdings")
	holdings.POST("", holdingHandler.CreateHolding)
	holdings.GET("", holdingHandler.GetHoldings)
	holdings.GET("/profitable", holdingHandler.GetProfitable)
	holdings.GET("/losing", holdingHandler.GetLosing)
	holdings.GET("/:id", holdingHandler.GetHoldingByID)
	holdings.PUT("/:id/price", holdingHandler.UpdatePrice)
	holdings.DELETE("/:id", holdingHandler.SellHolding)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("/summary", portfolioHandler.GetSummary)
	portfolio.GET("/performance", portfolioHandler.GetPerformance)
	portfolio.POST("/snapshots", portfolioHandler.TakeSnapshot)
	portfolio.GET("/snapshots", portfolioHandler.GetSnapshots)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// userCounter provides unique external IDs across registered test users.
var userCounter atomic.Int64

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	externalID := fmt.Sprintf("ext-%d", userCounter.Add(1))
	body := fmt.Sprintf(`{"email":%q,"name":"Test User","external_id":%q,"password":%q,"password_confirm":%q}`,
		email, externalID, password, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// deposit records a deposit for the given amount and returns the response map.
func (app *testApp) deposit(t *testing.T, token, amount string) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"kind":"deposit","credit":%q,"description":"Deposit"}`, amount)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}
