package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Minsekko/SJP-HR/internal/middleware"
	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "sjp-hr-test-jwt-secret"

var dbCounter int64

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens an isolated in-memory SQLite database and migrates all tables.
// Each test gets its own database that disappears when the connection closes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	n := atomic.AddInt64(&dbCounter, 1)
	dsn := fmt.Sprintf("file:test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// 内存库随连接消失，连接池必须保持单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, employeeID uint, username, role string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":      userID,
		"eid":      employeeID,
		"username": username,
		"role":     role,
		"iss":      "sjp-hr",
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestUser creates a test user in the database
func SeedTestUser(t *testing.T, db *gorm.DB, username, role string) *entity.User {
	t.Helper()
	user := &entity.User{
		Username: username,
		Email:    username + "@test.local",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedTestEmployee creates a test employee in the database
func SeedTestEmployee(t *testing.T, db *gorm.DB, number, name string) *entity.Employee {
	t.Helper()
	emp := &entity.Employee{
		EmployeeNumber: number,
		Name:           name,
		HireDate:       "2024-01-01",
		EmploymentType: entity.EmploymentTypeFullTime,
		Status:         entity.EmployeeStatusActive,
	}
	if err := db.Create(emp).Error; err != nil {
		t.Fatalf("Failed to seed test employee: %v", err)
	}
	return emp
}

// SeedDocType creates an approval document type
func SeedDocType(t *testing.T, db *gorm.DB, code, name string) *entity.ApprovalDocType {
	t.Helper()
	docType := &entity.ApprovalDocType{
		Code:     code,
		Name:     name,
		Prefix:   "APR",
		IsActive: true,
	}
	if err := db.Create(docType).Error; err != nil {
		t.Fatalf("Failed to seed doc type: %v", err)
	}
	return docType
}

// SeedAccountCode creates an account code
func SeedAccountCode(t *testing.T, db *gorm.DB, code, name, accountType string) *entity.AccountCode {
	t.Helper()
	ac := &entity.AccountCode{
		Code:     code,
		Name:     name,
		Type:     accountType,
		IsActive: true,
	}
	if err := db.Create(ac).Error; err != nil {
		t.Fatalf("Failed to seed account code: %v", err)
	}
	return ac
}

// SeedPartner creates a business partner
func SeedPartner(t *testing.T, db *gorm.DB, partnerType, companyName string) *entity.BusinessPartner {
	t.Helper()
	p := &entity.BusinessPartner{
		PartnerType: partnerType,
		CompanyName: companyName,
		IsActive:    true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed partner: %v", err)
	}
	return p
}
