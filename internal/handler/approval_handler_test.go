package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/Minsekko/SJP-HR/internal/service"
	"github.com/Minsekko/SJP-HR/internal/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type approvalHandlerFixture struct {
	router    *gin.Engine
	db        *gorm.DB
	docType   *entity.ApprovalDocType
	drafter   *entity.Employee
	approvers []*entity.Employee
}

func setupApprovalHandlerTest(t *testing.T) *approvalHandlerFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	docType := testutil.SeedDocType(t, db, "GENERAL", "一般稟議")
	drafter := testutil.SeedTestEmployee(t, db, "E-0001", "起案者")
	approvers := []*entity.Employee{
		testutil.SeedTestEmployee(t, db, "E-1001", "審批人1"),
		testutil.SeedTestEmployee(t, db, "E-1002", "審批人2"),
	}

	svc := service.NewApprovalService(repos.Approval, repos.Employee, nil, "")
	h := NewApprovalHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	approvals := api.Group("/approvals")
	approvals.GET("", h.List)
	approvals.POST("", h.Create)
	approvals.GET("/my-approvals", h.MyApprovals)
	approvals.GET("/:id", h.Get)
	approvals.GET("/:id/lines", h.ListLines)
	approvals.POST("/:id/lines", h.AddLine)
	approvals.POST("/:id/submit", h.Submit)
	approvals.POST("/:id/decide", h.Decide)

	return &approvalHandlerFixture{
		router:    router,
		db:        db,
		docType:   docType,
		drafter:   drafter,
		approvers: approvers,
	}
}

func tokenFor(emp *entity.Employee) string {
	return testutil.GenerateTestToken(100+emp.ID, emp.ID, emp.EmployeeNumber, "staff")
}

func (f *approvalHandlerFixture) createAndSubmit(t *testing.T) uint {
	t.Helper()
	drafterToken := tokenFor(f.drafter)

	w := testutil.DoRequest(f.router, http.MethodPost, "/api/v1/approvals", map[string]interface{}{
		"doc_type_id": f.docType.ID,
		"title":       "出差申请",
		"content":     "去大阪拜访客户",
		"approval_lines": []map[string]interface{}{
			{"approver_id": f.approvers[0].ID},
			{"approver_id": f.approvers[1].ID},
		},
	}, drafterToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	id := uint(data["id"].(float64))

	w = testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/submit", id), nil, drafterToken)
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}
	return id
}

func TestApprovalLifecycleHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)
	id := f.createAndSubmit(t)

	// 第一步通过
	w := testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/decide", id),
		map[string]interface{}{"action": "approve", "comments": "OK"}, tokenFor(f.approvers[0]))
	if w.Code != http.StatusOK {
		t.Fatalf("decide status = %d, body = %s", w.Code, w.Body.String())
	}

	// 最后一步通过后进入终态
	w = testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/decide", id),
		map[string]interface{}{"action": "approve"}, tokenFor(f.approvers[1]))
	if w.Code != http.StatusOK {
		t.Fatalf("final decide status = %d", w.Code)
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "approved" {
		t.Errorf("status = %v, want approved", data["status"])
	}
}

func TestDecideWrongApproverHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)
	id := f.createAndSubmit(t)

	// 第二步审批人在第一步决裁: 403
	w := testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/decide", id),
		map[string]interface{}{"action": "approve"}, tokenFor(f.approvers[1]))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403, body = %s", w.Code, w.Body.String())
	}
}

func TestSubmitTwiceHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)
	id := f.createAndSubmit(t)

	w := testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/submit", id), nil, tokenFor(f.drafter))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestDecideAfterRejectHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)
	id := f.createAndSubmit(t)

	// 第一步驳回
	w := testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/decide", id),
		map[string]interface{}{"action": "reject", "comments": "不批"}, tokenFor(f.approvers[0]))
	if w.Code != http.StatusOK {
		t.Fatalf("reject status = %d", w.Code)
	}

	// 终态后第二步审批人决裁: 400
	w = testutil.DoRequest(f.router, http.MethodPost, fmt.Sprintf("/api/v1/approvals/%d/decide", id),
		map[string]interface{}{"action": "approve"}, tokenFor(f.approvers[1]))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestSubmitMissingDocumentHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)

	w := testutil.DoRequest(f.router, http.MethodPost, "/api/v1/approvals/9999/submit", nil, tokenFor(f.drafter))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestListLinesHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)
	id := f.createAndSubmit(t)

	w := testutil.DoRequest(f.router, http.MethodGet, fmt.Sprintf("/api/v1/approvals/%d/lines", id), nil, tokenFor(f.drafter))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}

	w = testutil.DoRequest(f.router, http.MethodGet, "/api/v1/approvals/9999/lines", nil, tokenFor(f.drafter))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing doc status = %d, want 404", w.Code)
	}
}

func TestGetMissingDocumentHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)

	w := testutil.DoRequest(f.router, http.MethodGet, "/api/v1/approvals/9999", nil, tokenFor(f.drafter))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUnauthorizedHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)

	w := testutil.DoRequest(f.router, http.MethodGet, "/api/v1/approvals", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMyApprovalsHTTP(t *testing.T) {
	f := setupApprovalHandlerTest(t)
	f.createAndSubmit(t)

	w := testutil.DoRequest(f.router, http.MethodGet, "/api/v1/approvals/my-approvals", nil, tokenFor(f.approvers[0]))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}
