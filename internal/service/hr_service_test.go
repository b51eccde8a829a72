package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/Minsekko/SJP-HR/internal/testutil"
	"gorm.io/gorm"
)

func setupHRTest(t *testing.T) (*HRService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewHRService(repos.Employee, repos.Department, repos.Attendance, repos.Leave)
	return svc, db
}

func TestCreateEmployee(t *testing.T) {
	svc, _ := setupHRTest(t)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, &CreateEmployeeRequest{
		EmployeeNumber: "E-0001",
		Name:           "山田太郎",
		HireDate:       "2024-04-01",
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if emp.Status != entity.EmployeeStatusActive {
		t.Errorf("status = %q, want active", emp.Status)
	}
	if emp.EmploymentType != entity.EmploymentTypeFullTime {
		t.Errorf("employment_type = %q, want full_time", emp.EmploymentType)
	}

	// 工号重复
	_, err = svc.CreateEmployee(ctx, &CreateEmployeeRequest{
		EmployeeNumber: "E-0001",
		Name:           "佐藤次郎",
		HireDate:       "2024-05-01",
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate number: err = %v, want ErrValidation", err)
	}
}

func TestUpdateEmployeeStatus(t *testing.T) {
	svc, _ := setupHRTest(t)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, &CreateEmployeeRequest{
		EmployeeNumber: "E-0002",
		Name:           "鈴木一郎",
		HireDate:       "2023-01-10",
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	updated, err := svc.UpdateEmployee(ctx, emp.ID, &UpdateEmployeeRequest{Status: entity.EmployeeStatusResigned})
	if err != nil {
		t.Fatalf("update employee: %v", err)
	}
	if updated.Status != entity.EmployeeStatusResigned {
		t.Errorf("status = %q, want resigned", updated.Status)
	}

	if _, err := svc.UpdateEmployee(ctx, emp.ID, &UpdateEmployeeRequest{Status: "fired"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad status: err = %v, want ErrValidation", err)
	}
}

func TestCheckInCheckOut(t *testing.T) {
	svc, db := setupHRTest(t)
	ctx := context.Background()

	emp := testutil.SeedTestEmployee(t, db, "E-0003", "高橋三郎")

	att, err := svc.CheckIn(ctx, emp.ID)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if att.CheckIn == nil {
		t.Fatal("check_in not set")
	}

	// 重复打卡
	if _, err := svc.CheckIn(ctx, emp.ID); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("double check-in: err = %v, want ErrStateConflict", err)
	}

	out, err := svc.CheckOut(ctx, emp.ID)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if out.CheckOut == nil {
		t.Fatal("check_out not set")
	}
	if out.WorkHours < 0 {
		t.Errorf("work_hours = %f, want >= 0", out.WorkHours)
	}

	// 重复下班打卡
	if _, err := svc.CheckOut(ctx, emp.ID); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("double check-out: err = %v, want ErrStateConflict", err)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc, db := setupHRTest(t)

	emp := testutil.SeedTestEmployee(t, db, "E-0004", "田中四郎")

	if _, err := svc.CheckOut(context.Background(), emp.ID); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("err = %v, want ErrStateConflict", err)
	}
}

func TestLeaveFlow(t *testing.T) {
	svc, db := setupHRTest(t)
	ctx := context.Background()

	emp := testutil.SeedTestEmployee(t, db, "E-0005", "中村五郎")
	manager := testutil.SeedTestEmployee(t, db, "M-0001", "部長")

	leaveType := &entity.AttendanceType{Name: "年次有給", Code: "ANNUAL", IsPaid: true, DeductLeave: true}
	if err := db.Create(leaveType).Error; err != nil {
		t.Fatalf("seed leave type: %v", err)
	}

	leave, err := svc.CreateLeave(ctx, emp.ID, &CreateLeaveRequest{
		AttendanceTypeID: leaveType.ID,
		StartDate:        "2025-09-01",
		EndDate:          "2025-09-03",
		Days:             3,
		Reason:           "家族旅行",
	})
	if err != nil {
		t.Fatalf("create leave: %v", err)
	}
	if leave.Status != entity.LeaveStatusPending {
		t.Errorf("status = %q, want pending", leave.Status)
	}

	resolved, err := svc.ResolveLeave(ctx, leave.ID, manager.ID, "approve")
	if err != nil {
		t.Fatalf("resolve leave: %v", err)
	}
	if resolved.Status != entity.LeaveStatusApproved {
		t.Errorf("status = %q, want approved", resolved.Status)
	}
	if resolved.ApprovedBy == nil || *resolved.ApprovedBy != manager.ID {
		t.Errorf("approved_by = %v, want %d", resolved.ApprovedBy, manager.ID)
	}

	// 终态后再审批
	if _, err := svc.ResolveLeave(ctx, leave.ID, manager.ID, "reject"); !errors.Is(err, repository.ErrStateConflict) {
		t.Errorf("resolve after terminal: err = %v, want ErrStateConflict", err)
	}
}

func TestCreateLeaveValidation(t *testing.T) {
	svc, db := setupHRTest(t)
	ctx := context.Background()

	emp := testutil.SeedTestEmployee(t, db, "E-0006", "小林六郎")

	// 日期颠倒
	_, err := svc.CreateLeave(ctx, emp.ID, &CreateLeaveRequest{
		AttendanceTypeID: 1,
		StartDate:        "2025-09-05",
		EndDate:          "2025-09-01",
		Days:             3,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("reversed dates: err = %v, want ErrValidation", err)
	}

	// 天数非正
	_, err = svc.CreateLeave(ctx, emp.ID, &CreateLeaveRequest{
		AttendanceTypeID: 1,
		StartDate:        "2025-09-01",
		EndDate:          "2025-09-01",
		Days:             0,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("zero days: err = %v, want ErrValidation", err)
	}
}

func TestDepartments(t *testing.T) {
	svc, db := setupHRTest(t)
	ctx := context.Background()

	dept, err := svc.CreateDepartment(ctx, &CreateDepartmentRequest{Name: "開発部", Code: "DEV"})
	if err != nil {
		t.Fatalf("create department: %v", err)
	}

	emp := testutil.SeedTestEmployee(t, db, "E-0007", "開発者")
	emp.DepartmentID = &dept.ID
	if err := db.Save(emp).Error; err != nil {
		t.Fatalf("assign department: %v", err)
	}

	items, err := svc.ListDepartments(ctx)
	if err != nil {
		t.Fatalf("list departments: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("departments = %d, want 1", len(items))
	}
	if items[0].EmployeeCount != 1 {
		t.Errorf("employee_count = %d, want 1", items[0].EmployeeCount)
	}
}
