package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/testutil"
)

func TestDecideNonContiguousSteps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewApprovalRepository(db, NewSequenceRepository(db))
	ctx := context.Background()

	docType := testutil.SeedDocType(t, db, "GENERAL", "一般稟議")
	drafter := testutil.SeedTestEmployee(t, db, "E-0001", "起案者")

	doc := &entity.ApprovalDocument{
		DocNumber: "APR-20250829-001",
		DocTypeID: docType.ID,
		Title:     "设备采购申请",
		Content:   "采购三台测试设备",
		DrafterID: drafter.ID,
		Urgency:   entity.UrgencyNormal,
		Status:    entity.DocStatusDraft,
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}

	// 结审线步号 1, 3, 5 带空洞
	steps := []int{1, 3, 5}
	approvers := make([]*entity.Employee, len(steps))
	for i, step := range steps {
		approvers[i] = testutil.SeedTestEmployee(t, db,
			fmt.Sprintf("E-10%02d", i+1), fmt.Sprintf("審批人%d", i+1))
		line := &entity.ApprovalLine{
			DocumentID:   doc.ID,
			ApproverID:   approvers[i].ID,
			StepOrder:    step,
			ApprovalType: entity.ApprovalTypeApproval,
			Status:       entity.LineStatusPending,
		}
		if err := db.Create(line).Error; err != nil {
			t.Fatalf("create line %d: %v", step, err)
		}
	}

	if err := repo.Submit(ctx, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 推进按大于当前步的最小步号走，不是 current_step+1
	wantNext := []int{3, 5}
	for i := range steps {
		if err := repo.Decide(ctx, doc.ID, approvers[i].ID, entity.DecisionApprove, ""); err != nil {
			t.Fatalf("step %d approve: %v", steps[i], err)
		}
		got, err := repo.FindByID(ctx, doc.ID)
		if err != nil {
			t.Fatalf("find after step %d: %v", steps[i], err)
		}
		if i < len(wantNext) {
			if got.Status != entity.DocStatusPending {
				t.Errorf("after step %d: status = %q, want pending", steps[i], got.Status)
			}
			if got.CurrentStep == nil || *got.CurrentStep != wantNext[i] {
				t.Errorf("after step %d: current_step = %v, want %d", steps[i], got.CurrentStep, wantNext[i])
			}
		} else {
			if got.Status != entity.DocStatusApproved {
				t.Errorf("final status = %q, want approved", got.Status)
			}
			if got.CurrentStep != nil {
				t.Errorf("final current_step = %v, want nil", *got.CurrentStep)
			}
			if got.CompletedAt == nil {
				t.Error("completed_at not set on approval")
			}
		}
	}

	// 终态后再决裁被拒
	if err := repo.Decide(ctx, doc.ID, approvers[0].ID, entity.DecisionApprove, ""); !errors.Is(err, ErrStateConflict) {
		t.Errorf("decide after terminal: err = %v, want ErrStateConflict", err)
	}
}
