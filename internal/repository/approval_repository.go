package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"gorm.io/gorm"
)

// 工作流错误定义
var (
	// ErrStateConflict 单据不处于操作要求的状态
	ErrStateConflict = errors.New("document state conflict")
	// ErrForbidden 非当前步骤的指定审批人
	ErrForbidden = errors.New("not the designated approver for the current step")
)

// ApprovalRepository 审批文档仓库。
// Submit / Decide 的全部写入都是带 RowsAffected 检查的条件更新，
// 并发决裁同一步骤时只有一个事务能通过，其余以 ErrForbidden / ErrStateConflict 失败。
type ApprovalRepository struct {
	db  *gorm.DB
	seq *SequenceRepository
}

// NewApprovalRepository 创建审批文档仓库
func NewApprovalRepository(db *gorm.DB, seq *SequenceRepository) *ApprovalRepository {
	return &ApprovalRepository{db: db, seq: seq}
}

// FindByID 根据ID查找审批文档（含结审线与附件）
func (r *ApprovalRepository) FindByID(ctx context.Context, id uint) (*entity.ApprovalDocument, error) {
	var doc entity.ApprovalDocument
	err := r.db.WithContext(ctx).
		Preload("DocType").
		Preload("Drafter").
		Preload("Drafter.Department").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Preload("Lines.Approver").
		Preload("Attachments").
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ApprovalLineInput 创建文档时的结审线输入
type ApprovalLineInput struct {
	ApproverID   uint
	ApprovalType string
}

// CreateDocument 创建审批文档。
// 序号取得、文档插入、结审线插入在同一事务内完成，
// 不会留下无结审线的孤儿文档。
func (r *ApprovalRepository) CreateDocument(ctx context.Context, doc *entity.ApprovalDocument, prefix string, lines []ApprovalLineInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		date := time.Now().Format("20060102")
		seq, err := r.seq.NextSequence(tx, prefix, date)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		doc.DocNumber = fmt.Sprintf("%s-%s-%03d", prefix, date, seq)
		doc.Status = entity.DocStatusDraft

		if err := tx.Create(doc).Error; err != nil {
			return err
		}

		for i, line := range lines {
			approvalType := line.ApprovalType
			if approvalType == "" {
				approvalType = entity.ApprovalTypeApproval
			}
			al := &entity.ApprovalLine{
				DocumentID:   doc.ID,
				ApproverID:   line.ApproverID,
				StepOrder:    i + 1,
				ApprovalType: approvalType,
				Status:       entity.LineStatusPending,
			}
			if err := tx.Create(al).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// List 获取审批文档列表
func (r *ApprovalRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.ApprovalDocument, int64, error) {
	var docs []entity.ApprovalDocument
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ApprovalDocument{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if drafterID, ok := filters["drafter_id"].(uint); ok && drafterID != 0 {
		query = query.Where("drafter_id = ?", drafterID)
	}
	if docTypeID, ok := filters["doc_type_id"].(uint); ok && docTypeID != 0 {
		query = query.Where("doc_type_id = ?", docTypeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("DocType").
		Preload("Drafter").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// ListPendingForApprover 获取待某审批人决裁的文档（当前步骤指向该审批人）。
// 紧急优先，再按提交时间先后。
func (r *ApprovalRepository) ListPendingForApprover(ctx context.Context, approverID uint) ([]entity.ApprovalDocument, error) {
	var docs []entity.ApprovalDocument
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN approval_lines al ON al.document_id = approval_documents.id").
		Where("al.approver_id = ? AND approval_documents.status = ? AND al.step_order = approval_documents.current_step AND al.status = ?",
			approverID, entity.DocStatusPending, entity.LineStatusPending).
		Preload("DocType").
		Preload("Drafter").
		Order("CASE approval_documents.urgency WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 ELSE 2 END").
		Order("approval_documents.submitted_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Submit 上报审批: draft -> pending, current_step = 1。
// 非草稿状态（含不存在）时条件更新不命中，返回 ErrStateConflict。
func (r *ApprovalRepository) Submit(ctx context.Context, id uint) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.ApprovalDocument{}).
		Where("id = ? AND status = ?", id, entity.DocStatusDraft).
		Updates(map[string]interface{}{
			"status":       entity.DocStatusPending,
			"current_step": 1,
			"submitted_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// Decide 当前步骤审批人决裁: approve 推进或终结, reject 立即终结。
// 结审线更新与文档更新在同一事务中，两者都带条件谓词。
func (r *ApprovalRepository) Decide(ctx context.Context, id, approverID uint, decision, comments string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc entity.ApprovalDocument
		if err := tx.Where("id = ?", id).First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if doc.Status != entity.DocStatusPending || doc.CurrentStep == nil {
			return ErrStateConflict
		}
		step := *doc.CurrentStep
		now := time.Now()

		lineStatus := entity.LineStatusApproved
		if decision == entity.DecisionReject {
			lineStatus = entity.LineStatusRejected
		}

		// 只有 (document_id, step_order, approver_id) 都匹配且该线仍为 pending 才命中
		res := tx.Model(&entity.ApprovalLine{}).
			Where("document_id = ? AND step_order = ? AND approver_id = ? AND status = ?",
				id, step, approverID, entity.LineStatusPending).
			Updates(map[string]interface{}{
				"status":      lineStatus,
				"comments":    comments,
				"approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrForbidden
		}

		if decision == entity.DecisionReject {
			res = tx.Model(&entity.ApprovalDocument{}).
				Where("id = ? AND status = ? AND current_step = ?", id, entity.DocStatusPending, step).
				Updates(map[string]interface{}{
					"status":       entity.DocStatusRejected,
					"current_step": nil,
					"updated_at":   now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStateConflict
			}
			return nil
		}

		// 取 step_order 大于当前步且仍为 pending 的最小一条，
		// 容忍非连续步号，已决裁的线不再回访
		var next entity.ApprovalLine
		err := tx.Where("document_id = ? AND step_order > ? AND status = ?",
			id, step, entity.LineStatusPending).
			Order("step_order ASC").
			First(&next).Error
		switch {
		case err == nil:
			res = tx.Model(&entity.ApprovalDocument{}).
				Where("id = ? AND status = ? AND current_step = ?", id, entity.DocStatusPending, step).
				Updates(map[string]interface{}{
					"current_step": next.StepOrder,
					"updated_at":   now,
				})
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 最后一步，终审通过
			res = tx.Model(&entity.ApprovalDocument{}).
				Where("id = ? AND status = ? AND current_step = ?", id, entity.DocStatusPending, step).
				Updates(map[string]interface{}{
					"status":       entity.DocStatusApproved,
					"current_step": nil,
					"completed_at": now,
					"updated_at":   now,
				})
		default:
			return err
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}
		return nil
	})
}

// ListLines 获取文档的结审线（按步号升序）
func (r *ApprovalRepository) ListLines(ctx context.Context, documentID uint) ([]entity.ApprovalLine, error) {
	var lines []entity.ApprovalLine
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Preload("Approver").
		Order("step_order ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// AddLine 在草稿文档末尾追加结审线（步号 = 当前最大步号 + 1）
func (r *ApprovalRepository) AddLine(ctx context.Context, documentID, approverID uint, approvalType string) (*entity.ApprovalLine, error) {
	var line *entity.ApprovalLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxStep int
		if err := tx.Model(&entity.ApprovalLine{}).
			Where("document_id = ?", documentID).
			Select("COALESCE(MAX(step_order), 0)").
			Scan(&maxStep).Error; err != nil {
			return err
		}

		line = &entity.ApprovalLine{
			DocumentID:   documentID,
			ApproverID:   approverID,
			StepOrder:    maxStep + 1,
			ApprovalType: approvalType,
			Status:       entity.LineStatusPending,
		}
		return tx.Create(line).Error
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// CountLines 统计文档的结审线数量
func (r *ApprovalRepository) CountLines(ctx context.Context, documentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ApprovalLine{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

// ============================================================
// 附件相关操作
// ============================================================

// AddAttachment 添加附件记录
func (r *ApprovalRepository) AddAttachment(ctx context.Context, att *entity.ApprovalAttachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// ListAttachments 获取文档附件
func (r *ApprovalRepository) ListAttachments(ctx context.Context, documentID uint) ([]entity.ApprovalAttachment, error) {
	var atts []entity.ApprovalAttachment
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

// FindAttachmentByID 根据ID查找附件
func (r *ApprovalRepository) FindAttachmentByID(ctx context.Context, id uint) (*entity.ApprovalAttachment, error) {
	var att entity.ApprovalAttachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

// ============================================================
// 文档类型相关操作
// ============================================================

// ListDocTypes 获取启用中的文档类型
func (r *ApprovalRepository) ListDocTypes(ctx context.Context) ([]entity.ApprovalDocType, error) {
	var types []entity.ApprovalDocType
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

// FindDocTypeByID 根据ID查找文档类型
func (r *ApprovalRepository) FindDocTypeByID(ctx context.Context, id uint) (*entity.ApprovalDocType, error) {
	var dt entity.ApprovalDocType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dt, nil
}
