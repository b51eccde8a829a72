package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/Minsekko/SJP-HR/internal/testutil"
)

type approvalFixture struct {
	svc       *ApprovalService
	repos     *repository.Repositories
	docType   *entity.ApprovalDocType
	drafter   *entity.Employee
	approvers []*entity.Employee
}

func setupApprovalTest(t *testing.T) *approvalFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	docType := testutil.SeedDocType(t, db, "GENERAL", "一般稟議")
	drafter := testutil.SeedTestEmployee(t, db, "E-0001", "起案者")

	approvers := make([]*entity.Employee, 3)
	for i := range approvers {
		approvers[i] = testutil.SeedTestEmployee(t, db,
			fmt.Sprintf("E-10%02d", i+1), fmt.Sprintf("審批人%d", i+1))
	}

	svc := NewApprovalService(repos.Approval, repos.Employee, nil, "")
	return &approvalFixture{
		svc:       svc,
		repos:     repos,
		docType:   docType,
		drafter:   drafter,
		approvers: approvers,
	}
}

func (f *approvalFixture) createDocument(t *testing.T, approverCount int) *entity.ApprovalDocument {
	t.Helper()
	lines := make([]ApprovalLineInput, 0, approverCount)
	for i := 0; i < approverCount; i++ {
		lines = append(lines, ApprovalLineInput{ApproverID: f.approvers[i].ID})
	}

	doc, err := f.svc.Create(context.Background(), f.drafter.ID, &CreateDocumentRequest{
		DocTypeID:     f.docType.ID,
		Title:         "设备采购申请",
		Content:       "采购三台测试设备",
		ApprovalLines: lines,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func TestCreateDocument(t *testing.T) {
	f := setupApprovalTest(t)

	doc := f.createDocument(t, 3)

	if doc.Status != entity.DocStatusDraft {
		t.Errorf("status = %q, want draft", doc.Status)
	}
	if doc.CurrentStep != nil {
		t.Errorf("current_step = %v, want nil for draft", *doc.CurrentStep)
	}
	if len(doc.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(doc.Lines))
	}
	for i, line := range doc.Lines {
		if line.StepOrder != i+1 {
			t.Errorf("line %d step_order = %d, want %d", i, line.StepOrder, i+1)
		}
		if line.Status != entity.LineStatusPending {
			t.Errorf("line %d status = %q, want pending", i, line.Status)
		}
		if line.ApproverID != f.approvers[i].ID {
			t.Errorf("line %d approver = %d, want %d", i, line.ApproverID, f.approvers[i].ID)
		}
	}
}

func TestDocNumberSequence(t *testing.T) {
	f := setupApprovalTest(t)

	// 同一天内连续创建，序号单调递增无空洞
	var prev string
	for i := 1; i <= 3; i++ {
		doc := f.createDocument(t, 1)
		want := fmt.Sprintf("-%03d", i)
		if doc.DocNumber[len(doc.DocNumber)-4:] != want {
			t.Errorf("doc_number = %q, want suffix %q", doc.DocNumber, want)
		}
		if doc.DocNumber == prev {
			t.Errorf("duplicate doc_number %q", doc.DocNumber)
		}
		prev = doc.DocNumber
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *CreateDocumentRequest
	}{
		{"missing title", &CreateDocumentRequest{DocTypeID: f.docType.ID, Content: "c"}},
		{"missing content", &CreateDocumentRequest{DocTypeID: f.docType.ID, Title: "t"}},
		{"missing doc type", &CreateDocumentRequest{Title: "t", Content: "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, f.drafter.ID, tc.req); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	// 不存在的文档类型
	if _, err := f.svc.Create(ctx, f.drafter.ID, &CreateDocumentRequest{
		DocTypeID: 9999, Title: "t", Content: "c",
	}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown doc type: err = %v, want ErrNotFound", err)
	}
}

func TestSubmit(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 2)

	submitted, err := f.svc.Submit(ctx, doc.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != entity.DocStatusPending {
		t.Errorf("status = %q, want pending", submitted.Status)
	}
	if submitted.CurrentStep == nil || *submitted.CurrentStep != 1 {
		t.Errorf("current_step = %v, want 1", submitted.CurrentStep)
	}
	if submitted.SubmittedAt == nil {
		t.Error("submitted_at not set")
	}

	// 重复提交
	if _, err := f.svc.Submit(ctx, doc.ID); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("double submit: err = %v, want ErrStateConflict", err)
	}
}

func TestSubmitWithoutLines(t *testing.T) {
	f := setupApprovalTest(t)

	doc := f.createDocument(t, 0)

	if _, err := f.svc.Submit(context.Background(), doc.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSubmitMissingDocument(t *testing.T) {
	f := setupApprovalTest(t)

	// 不存在的文档按 NotFound 报告，不落入结审线校验
	if _, err := f.svc.Submit(context.Background(), 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApproveChain(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 3)
	if _, err := f.svc.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 第一步通过，推进到第二步
	doc2, err := f.svc.Decide(ctx, doc.ID, f.approvers[0].ID, &DecideRequest{Action: "approve", Comments: "同意"})
	if err != nil {
		t.Fatalf("step 1 approve: %v", err)
	}
	if doc2.Status != entity.DocStatusPending {
		t.Errorf("status = %q, want pending", doc2.Status)
	}
	if doc2.CurrentStep == nil || *doc2.CurrentStep != 2 {
		t.Errorf("current_step = %v, want 2", doc2.CurrentStep)
	}
	if doc2.Lines[0].Status != entity.LineStatusApproved {
		t.Errorf("line 1 status = %q, want approved", doc2.Lines[0].Status)
	}
	if doc2.Lines[0].ApprovedAt == nil {
		t.Error("line 1 approved_at not set")
	}

	// 第二步、第三步依次通过
	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[1].ID, &DecideRequest{Action: "approve"}); err != nil {
		t.Fatalf("step 2 approve: %v", err)
	}
	final, err := f.svc.Decide(ctx, doc.ID, f.approvers[2].ID, &DecideRequest{Action: "approve"})
	if err != nil {
		t.Fatalf("step 3 approve: %v", err)
	}

	if final.Status != entity.DocStatusApproved {
		t.Errorf("status = %q, want approved", final.Status)
	}
	if final.CurrentStep != nil {
		t.Errorf("current_step = %v, want nil after terminal", *final.CurrentStep)
	}
	if final.CompletedAt == nil {
		t.Error("completed_at not set on approval")
	}
	for i, line := range final.Lines {
		if line.Status != entity.LineStatusApproved {
			t.Errorf("line %d status = %q, want approved", i+1, line.Status)
		}
	}
}

func TestRejectShortCircuits(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 3)
	if _, err := f.svc.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[0].ID, &DecideRequest{Action: "approve"}); err != nil {
		t.Fatalf("step 1 approve: %v", err)
	}

	// 第二步驳回，文档立即终结
	rejected, err := f.svc.Decide(ctx, doc.ID, f.approvers[1].ID, &DecideRequest{Action: "reject", Comments: "预算不足"})
	if err != nil {
		t.Fatalf("step 2 reject: %v", err)
	}
	if rejected.Status != entity.DocStatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if rejected.CurrentStep != nil {
		t.Errorf("current_step = %v, want nil after reject", *rejected.CurrentStep)
	}
	if rejected.Lines[1].Comments != "预算不足" {
		t.Errorf("line 2 comments = %q", rejected.Lines[1].Comments)
	}

	// 第三步保持 pending，不被级联改写
	if rejected.Lines[2].Status != entity.LineStatusPending {
		t.Errorf("line 3 status = %q, want pending", rejected.Lines[2].Status)
	}

	// 终态后第三步审批人决裁被拒
	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[2].ID, &DecideRequest{Action: "approve"}); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("decide after terminal: err = %v, want ErrStateConflict", err)
	}
}

func TestDecideWrongApprover(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 3)
	if _, err := f.svc.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 链上靠后的审批人抢跳
	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[2].ID, &DecideRequest{Action: "approve"}); !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("later approver: err = %v, want ErrForbidden", err)
	}

	// 链外的人
	if _, err := f.svc.Decide(ctx, doc.ID, f.drafter.ID, &DecideRequest{Action: "approve"}); !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("outsider: err = %v, want ErrForbidden", err)
	}

	// 同一审批人重复决裁同一步
	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[0].ID, &DecideRequest{Action: "approve"}); err != nil {
		t.Fatalf("step 1 approve: %v", err)
	}
	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[0].ID, &DecideRequest{Action: "approve"}); !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("repeat decide: err = %v, want ErrForbidden", err)
	}
}

func TestDecideValidation(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 1)
	if _, err := f.svc.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := f.svc.Decide(ctx, doc.ID, f.approvers[0].ID, &DecideRequest{Action: "maybe"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad action: err = %v, want ErrValidation", err)
	}

	// 草稿文档不可决裁
	draft := f.createDocument(t, 1)
	if _, err := f.svc.Decide(ctx, draft.ID, f.approvers[0].ID, &DecideRequest{Action: "approve"}); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("decide draft: err = %v, want ErrStateConflict", err)
	}

	// 不存在的文档
	if _, err := f.svc.Decide(ctx, 9999, f.approvers[0].ID, &DecideRequest{Action: "approve"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing doc: err = %v, want ErrNotFound", err)
	}
}

func TestAddLine(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 1)

	line, err := f.svc.AddLine(ctx, doc.ID, &AddLineRequest{ApproverID: f.approvers[1].ID})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if line.StepOrder != 2 {
		t.Errorf("step_order = %d, want 2", line.StepOrder)
	}
	if line.ApprovalType != entity.ApprovalTypeApproval {
		t.Errorf("approval_type = %q, want approval", line.ApprovalType)
	}

	// 提交后不可追加
	if _, err := f.svc.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.svc.AddLine(ctx, doc.ID, &AddLineRequest{ApproverID: f.approvers[2].ID}); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("add line after submit: err = %v, want ErrStateConflict", err)
	}
}

func TestMyApprovals(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	// 文档A: 审批人1为当前步
	docA := f.createDocument(t, 2)
	if _, err := f.svc.Submit(ctx, docA.ID); err != nil {
		t.Fatalf("submit A: %v", err)
	}

	// 文档B: 紧急，审批人1为当前步
	docB, err := f.svc.Create(ctx, f.drafter.ID, &CreateDocumentRequest{
		DocTypeID: f.docType.ID,
		Title:     "紧急报修",
		Content:   "服务器宕机",
		Urgency:   entity.UrgencyUrgent,
		ApprovalLines: []ApprovalLineInput{
			{ApproverID: f.approvers[0].ID},
		},
	})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	if _, err := f.svc.Submit(ctx, docB.ID); err != nil {
		t.Fatalf("submit B: %v", err)
	}

	items, err := f.svc.MyApprovals(ctx, f.approvers[0].ID)
	if err != nil {
		t.Fatalf("my approvals: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	// 紧急的排在前面
	if items[0].ID != docB.ID {
		t.Errorf("first item = %d, want urgent document %d", items[0].ID, docB.ID)
	}

	// 审批人2还没轮到
	items2, err := f.svc.MyApprovals(ctx, f.approvers[1].ID)
	if err != nil {
		t.Fatalf("my approvals 2: %v", err)
	}
	if len(items2) != 0 {
		t.Errorf("approver 2 items = %d, want 0", len(items2))
	}

	// 第一步通过后轮到审批人2
	if _, err := f.svc.Decide(ctx, docA.ID, f.approvers[0].ID, &DecideRequest{Action: "approve"}); err != nil {
		t.Fatalf("approve A: %v", err)
	}
	items2, err = f.svc.MyApprovals(ctx, f.approvers[1].ID)
	if err != nil {
		t.Fatalf("my approvals 2 after: %v", err)
	}
	if len(items2) != 1 || items2[0].ID != docA.ID {
		t.Errorf("approver 2 items = %v, want [%d]", len(items2), docA.ID)
	}
}

func TestSingleApproverDocument(t *testing.T) {
	f := setupApprovalTest(t)
	ctx := context.Background()

	doc := f.createDocument(t, 1)
	if _, err := f.svc.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	final, err := f.svc.Decide(ctx, doc.ID, f.approvers[0].ID, &DecideRequest{Action: "approve"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if final.Status != entity.DocStatusApproved {
		t.Errorf("status = %q, want approved", final.Status)
	}
	if final.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}
