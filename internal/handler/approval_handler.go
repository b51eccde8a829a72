package handler

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/Minsekko/SJP-HR/internal/service"
	"github.com/gin-gonic/gin"
)

// ApprovalHandler 审批文档处理器
type ApprovalHandler struct {
	svc *service.ApprovalService
}

// NewApprovalHandler 创建审批处理器
func NewApprovalHandler(svc *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{svc: svc}
}

// List 审批文档列表
// GET /api/v1/approvals?status=&drafter_id=&doc_type_id=
func (h *ApprovalHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if drafterID := c.Query("drafter_id"); drafterID != "" {
		if v, err := strconv.ParseUint(drafterID, 10, 32); err == nil {
			filters["drafter_id"] = uint(v)
		}
	}
	if docTypeID := c.Query("doc_type_id"); docTypeID != "" {
		if v, err := strconv.ParseUint(docTypeID, 10, 32); err == nil {
			filters["doc_type_id"] = uint(v)
		}
	}

	result, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, result)
}

// MyApprovals 待我审批的文档列表
// GET /api/v1/approvals/my-approvals
func (h *ApprovalHandler) MyApprovals(c *gin.Context) {
	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	docs, err := h.svc.MyApprovals(c.Request.Context(), employeeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": docs})
}

// Get 审批文档详情
// GET /api/v1/approvals/:id
func (h *ApprovalHandler) Get(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	doc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, doc)
}

// Create 创建审批文档（草稿）
// POST /api/v1/approvals
func (h *ApprovalHandler) Create(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	doc, err := h.svc.Create(c.Request.Context(), employeeID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, doc)
}

// AddLine 草稿追加结审线
// POST /api/v1/approvals/:id/lines
func (h *ApprovalHandler) AddLine(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	var req service.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	line, err := h.svc.AddLine(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, line)
}

// ListLines 结审线列表
// GET /api/v1/approvals/:id/lines
func (h *ApprovalHandler) ListLines(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	lines, err := h.svc.ListLines(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": lines})
}

// Submit 提交审批，draft -> pending
// POST /api/v1/approvals/:id/submit
func (h *ApprovalHandler) Submit(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	doc, err := h.svc.Submit(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, doc)
}

// Decide 当前步骤决裁，approve 或 reject
// POST /api/v1/approvals/:id/decide
func (h *ApprovalHandler) Decide(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	var req service.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	doc, err := h.svc.Decide(c.Request.Context(), id, employeeID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, doc)
}

// ListDocTypes 审批文档类型列表
// GET /api/v1/approvals/doc-types
func (h *ApprovalHandler) ListDocTypes(c *gin.Context) {
	types, err := h.svc.ListDocTypes(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": types})
}

// GetDocType 审批文档类型详情
// GET /api/v1/approvals/doc-types/:id
func (h *ApprovalHandler) GetDocType(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid doc type id")
		return
	}

	docType, err := h.svc.GetDocType(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, docType)
}

// UploadAttachment 上传附件
// POST /api/v1/approvals/:id/attachments
func (h *ApprovalHandler) UploadAttachment(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "open upload: "+err.Error())
		return
	}
	defer file.Close()

	att, err := h.svc.UploadAttachment(
		c.Request.Context(),
		id,
		GetUserID(c),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, att)
}

// ListAttachments 附件列表
// GET /api/v1/approvals/:id/attachments
func (h *ApprovalHandler) ListAttachments(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid document id")
		return
	}

	items, err := h.svc.ListAttachments(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// DownloadAttachment 下载附件
// GET /api/v1/approvals/attachments/:attachmentId/download
func (h *ApprovalHandler) DownloadAttachment(c *gin.Context) {
	attachmentID := ParamUint(c, "attachmentId")
	if attachmentID == 0 {
		BadRequest(c, "invalid attachment id")
		return
	}

	reader, att, err := h.svc.DownloadAttachment(c.Request.Context(), attachmentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(att.FileName)))
	c.Header("Content-Type", att.MimeType)
	c.Status(200)
	io.Copy(c.Writer, reader)
}
