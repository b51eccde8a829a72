package handler

import (
	"net/http"
	"testing"

	"github.com/Minsekko/SJP-HR/internal/middleware"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/Minsekko/SJP-HR/internal/service"
	"github.com/Minsekko/SJP-HR/internal/testutil"
	"github.com/gin-gonic/gin"
)

func setupHRHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	svc := service.NewHRService(repos.Employee, repos.Department, repos.Attendance, repos.Leave)
	h := NewHRHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	employees := api.Group("/employees")
	employees.GET("", h.ListEmployees)
	employees.POST("", middleware.RequireRole("hr"), h.CreateEmployee)

	return router
}

func TestCreateEmployeeRoleHTTP(t *testing.T) {
	router := setupHRHandlerTest(t)

	body := map[string]interface{}{
		"employee_number": "E-2001",
		"name":            "田中太郎",
		"hire_date":       "2025-04-01",
	}

	// staff 角色不可登记社员
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/employees", body,
		testutil.GenerateTestToken(1, 1, "staff-user", "staff"))
	if w.Code != http.StatusForbidden {
		t.Errorf("staff status = %d, want 403, body = %s", w.Code, w.Body.String())
	}

	// hr 角色可登记
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/employees", body,
		testutil.GenerateTestToken(2, 2, "hr-user", "hr"))
	if w.Code != http.StatusCreated {
		t.Errorf("hr status = %d, want 201, body = %s", w.Code, w.Body.String())
	}

	// admin 放行所有角色要求
	body["employee_number"] = "E-2002"
	body["name"] = "佐藤花子"
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/employees", body,
		testutil.GenerateTestToken(3, 3, "admin-user", "admin"))
	if w.Code != http.StatusCreated {
		t.Errorf("admin status = %d, want 201, body = %s", w.Code, w.Body.String())
	}

	// 查询不受角色限制
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/employees", nil,
		testutil.GenerateTestToken(1, 1, "staff-user", "staff"))
	if w.Code != http.StatusOK {
		t.Errorf("list status = %d, want 200", w.Code)
	}
}
