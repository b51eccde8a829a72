package entity

import (
	"time"
)

// ApprovalDocType 审批文档类型
type ApprovalDocType struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:64;not null"`
	Code         string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Prefix       string    `json:"prefix" gorm:"size:8;not null;default:APR"`
	FormTemplate string    `json:"form_template" gorm:"type:text"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ApprovalDocType) TableName() string {
	return "approval_doc_types"
}

// ApprovalDocument 审批文档
//
// 状态机: draft --Submit--> pending --(最后一步通过)--> approved
//
//	pending --(任一步驳回)--> rejected
//
// approved / rejected 为终态。pending 期间 CurrentStep 指向唯一待审的结审线。
type ApprovalDocument struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	DocNumber   string     `json:"doc_number" gorm:"size:32;not null;uniqueIndex"`
	DocTypeID   uint       `json:"doc_type_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"size:256;not null"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	DrafterID   uint       `json:"drafter_id" gorm:"not null;index"`
	Urgency     string     `json:"urgency" gorm:"size:16;not null;default:normal"`
	Status      string     `json:"status" gorm:"size:16;not null;default:draft;index"`
	CurrentStep *int       `json:"current_step"`
	SubmittedAt *time.Time `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 关联
	DocType     *ApprovalDocType     `json:"doc_type,omitempty" gorm:"foreignKey:DocTypeID"`
	Drafter     *Employee            `json:"drafter,omitempty" gorm:"foreignKey:DrafterID"`
	Lines       []ApprovalLine       `json:"approval_lines,omitempty" gorm:"foreignKey:DocumentID"`
	Attachments []ApprovalAttachment `json:"attachments,omitempty" gorm:"foreignKey:DocumentID"`
}

func (ApprovalDocument) TableName() string {
	return "approval_documents"
}

// ApprovalLine 结审线（审批链中的一步）
type ApprovalLine struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	DocumentID   uint       `json:"document_id" gorm:"not null;uniqueIndex:uniq_doc_step,priority:1;index:idx_doc_approver,priority:1"`
	ApproverID   uint       `json:"approver_id" gorm:"not null;index:idx_doc_approver,priority:2"`
	StepOrder    int        `json:"step_order" gorm:"not null;uniqueIndex:uniq_doc_step,priority:2"`
	ApprovalType string     `json:"approval_type" gorm:"size:16;not null;default:approval"`
	Status       string     `json:"status" gorm:"size:16;not null;default:pending"`
	Comments     string     `json:"comments" gorm:"type:text"`
	ApprovedAt   *time.Time `json:"approved_at"`
	CreatedAt    time.Time  `json:"created_at"`

	// 关联
	Document *ApprovalDocument `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
	Approver *Employee         `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
}

func (ApprovalLine) TableName() string {
	return "approval_lines"
}

// ApprovalAttachment 审批附件
type ApprovalAttachment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DocumentID uint      `json:"document_id" gorm:"not null;index"`
	FileName   string    `json:"file_name" gorm:"size:256;not null"`
	FilePath   string    `json:"file_path" gorm:"size:512;not null"`
	FileSize   int64     `json:"file_size" gorm:"not null"`
	MimeType   string    `json:"mime_type" gorm:"size:128"`
	UploadedBy uint      `json:"uploaded_by" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ApprovalAttachment) TableName() string {
	return "approval_attachments"
}

// DocSequence 按 (类别, 日期) 的单据序号计数器。
// 序号在插入单据的同一事务内以 value = value + 1 条件更新取得，
// 避免 count-then-insert 在并发创建下产生重号。
type DocSequence struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Category string `json:"category" gorm:"size:16;not null;uniqueIndex:uniq_seq_scope,priority:1"`
	Date     string `json:"date" gorm:"size:8;not null;uniqueIndex:uniq_seq_scope,priority:2"`
	Value    int    `json:"value" gorm:"not null;default:0"`
}

func (DocSequence) TableName() string {
	return "doc_sequences"
}

// 审批文档状态常量
const (
	DocStatusDraft    = "draft"
	DocStatusPending  = "pending"
	DocStatusApproved = "approved"
	DocStatusRejected = "rejected"
)

// 结审线状态常量
const (
	LineStatusPending  = "pending"
	LineStatusApproved = "approved"
	LineStatusRejected = "rejected"
)

// 结审线类型常量
const (
	ApprovalTypeApproval  = "approval"
	ApprovalTypeReference = "reference"
)

// 紧急程度常量
const (
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// 审批决策常量
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)
