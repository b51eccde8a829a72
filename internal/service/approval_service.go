package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ApprovalService 审批工作流服务。
// 核心状态机: draft --Submit--> pending --Decide--> approved/rejected，
// pending 期间 current_step 始终指向唯一待审的结审线。
type ApprovalService struct {
	repo         *repository.ApprovalRepository
	employeeRepo *repository.EmployeeRepository
	minioClient  *minio.Client
	bucketName   string
}

// NewApprovalService 创建审批工作流服务
func NewApprovalService(repo *repository.ApprovalRepository, employeeRepo *repository.EmployeeRepository, minioClient *minio.Client, bucketName string) *ApprovalService {
	return &ApprovalService{
		repo:         repo,
		employeeRepo: employeeRepo,
		minioClient:  minioClient,
		bucketName:   bucketName,
	}
}

// ApprovalLineInput 结审线输入
type ApprovalLineInput struct {
	ApproverID   uint   `json:"approver_id" binding:"required"`
	ApprovalType string `json:"approval_type"`
}

// CreateDocumentRequest 创建审批文档请求
type CreateDocumentRequest struct {
	DocTypeID     uint                `json:"doc_type_id" binding:"required"`
	Title         string              `json:"title" binding:"required"`
	Content       string              `json:"content" binding:"required"`
	Urgency       string              `json:"urgency"`
	ApprovalLines []ApprovalLineInput `json:"approval_lines"`
}

// DecideRequest 决裁请求
type DecideRequest struct {
	Action   string `json:"action" binding:"required"` // approve/reject
	Comments string `json:"comments"`
}

// AddLineRequest 追加结审线请求
type AddLineRequest struct {
	ApproverID   uint   `json:"approver_id" binding:"required"`
	ApprovalType string `json:"approval_type"`
}

// DocumentListResult 审批文档列表结果
type DocumentListResult struct {
	Items      []entity.ApprovalDocument `json:"items"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

// List 获取审批文档列表
func (s *ApprovalService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) (*DocumentListResult, error) {
	docs, total, err := s.repo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &DocumentListResult{
		Items:      docs,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get 获取审批文档详情
func (s *ApprovalService) Get(ctx context.Context, id uint) (*entity.ApprovalDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

// Create 创建审批文档（草稿状态）。
// 文档与结审线作为一个逻辑单元写入，结审线步号取自输入顺序。
func (s *ApprovalService) Create(ctx context.Context, drafterID uint, req *CreateDocumentRequest) (*entity.ApprovalDocument, error) {
	if req.DocTypeID == 0 {
		return nil, fmt.Errorf("%w: doc_type_id is required", ErrValidation)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if drafterID == 0 {
		return nil, fmt.Errorf("%w: drafter is required", ErrValidation)
	}

	docType, err := s.repo.FindDocTypeByID(ctx, req.DocTypeID)
	if err != nil {
		return nil, fmt.Errorf("find doc type: %w", err)
	}

	if _, err := s.employeeRepo.FindByID(ctx, drafterID); err != nil {
		return nil, fmt.Errorf("find drafter: %w", err)
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = entity.UrgencyNormal
	}

	doc := &entity.ApprovalDocument{
		DocTypeID: req.DocTypeID,
		Title:     req.Title,
		Content:   req.Content,
		DrafterID: drafterID,
		Urgency:   urgency,
	}

	lines := make([]repository.ApprovalLineInput, 0, len(req.ApprovalLines))
	for _, l := range req.ApprovalLines {
		lines = append(lines, repository.ApprovalLineInput{
			ApproverID:   l.ApproverID,
			ApprovalType: l.ApprovalType,
		})
	}

	if err := s.repo.CreateDocument(ctx, doc, docType.Prefix, lines); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return s.repo.FindByID(ctx, doc.ID)
}

// AddLine 向草稿文档追加结审线
func (s *ApprovalService) AddLine(ctx context.Context, documentID uint, req *AddLineRequest) (*entity.ApprovalLine, error) {
	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if doc.Status != entity.DocStatusDraft {
		return nil, fmt.Errorf("add line: %w", repository.ErrStateConflict)
	}

	approvalType := req.ApprovalType
	if approvalType == "" {
		approvalType = entity.ApprovalTypeApproval
	}

	line, err := s.repo.AddLine(ctx, documentID, req.ApproverID, approvalType)
	if err != nil {
		return nil, fmt.Errorf("add line: %w", err)
	}
	return line, nil
}

// Submit 上报审批。要求至少有一条结审线，否则文档会永远停在 pending。
func (s *ApprovalService) Submit(ctx context.Context, id uint) (*entity.ApprovalDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if doc.Status != entity.DocStatusDraft {
		return nil, fmt.Errorf("submit document: %w", repository.ErrStateConflict)
	}

	count, err := s.repo.CountLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count lines: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no approvers assigned", ErrValidation)
	}

	if err := s.repo.Submit(ctx, id); err != nil {
		return nil, fmt.Errorf("submit document: %w", err)
	}

	return s.repo.FindByID(ctx, id)
}

// Decide 当前步骤审批人决裁。approverID 来自已认证身份，不取自请求体。
func (s *ApprovalService) Decide(ctx context.Context, id, approverID uint, req *DecideRequest) (*entity.ApprovalDocument, error) {
	if req.Action != entity.DecisionApprove && req.Action != entity.DecisionReject {
		return nil, fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	}

	if err := s.repo.Decide(ctx, id, approverID, req.Action, req.Comments); err != nil {
		return nil, fmt.Errorf("decide document: %w", err)
	}

	return s.repo.FindByID(ctx, id)
}

// ListLines 获取文档的结审线（按步号升序）
func (s *ApprovalService) ListLines(ctx context.Context, documentID uint) ([]entity.ApprovalLine, error) {
	if _, err := s.repo.FindByID(ctx, documentID); err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return s.repo.ListLines(ctx, documentID)
}

// MyApprovals 获取待我决裁的文档
func (s *ApprovalService) MyApprovals(ctx context.Context, approverID uint) ([]entity.ApprovalDocument, error) {
	return s.repo.ListPendingForApprover(ctx, approverID)
}

// ListDocTypes 获取文档类型列表
func (s *ApprovalService) ListDocTypes(ctx context.Context) ([]entity.ApprovalDocType, error) {
	return s.repo.ListDocTypes(ctx)
}

// GetDocType 获取文档类型详情
func (s *ApprovalService) GetDocType(ctx context.Context, id uint) (*entity.ApprovalDocType, error) {
	return s.repo.FindDocTypeByID(ctx, id)
}

// ============================================================
// 附件
// ============================================================

// UploadAttachment 上传附件并记录元数据
func (s *ApprovalService) UploadAttachment(ctx context.Context, documentID, userID uint, fileName, contentType string, fileSize int64, reader io.Reader) (*entity.ApprovalAttachment, error) {
	if _, err := s.repo.FindByID(ctx, documentID); err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}

	objectName := fmt.Sprintf("approval/%d/%s-%s", documentID, uuid.New().String()[:8], fileName)

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	att := &entity.ApprovalAttachment{
		DocumentID: documentID,
		FileName:   fileName,
		FilePath:   objectName,
		FileSize:   fileSize,
		MimeType:   contentType,
		UploadedBy: userID,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.AddAttachment(ctx, att); err != nil {
		return nil, fmt.Errorf("add attachment: %w", err)
	}

	return att, nil
}

// ListAttachments 获取文档附件列表
func (s *ApprovalService) ListAttachments(ctx context.Context, documentID uint) ([]entity.ApprovalAttachment, error) {
	return s.repo.ListAttachments(ctx, documentID)
}

// DownloadAttachment 下载附件
func (s *ApprovalService) DownloadAttachment(ctx context.Context, attachmentID uint) (io.ReadCloser, *entity.ApprovalAttachment, error) {
	att, err := s.repo.FindAttachmentByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("find attachment: %w", err)
	}

	if s.minioClient == nil {
		return nil, att, fmt.Errorf("storage not configured")
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, att.FilePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}

	return object, att, nil
}
