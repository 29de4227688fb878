package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/internal/middleware"
	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/pkg/utils"
)

type FilesHandler struct {
	files *services.FileService
}

func NewFilesHandler(files *services.FileService) *FilesHandler {
	return &FilesHandler{files: files}
}

type createFileRequest struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Data     string      `json:"data"`
	ParentID interface{} `json:"parentId"`
	IsPublic bool        `json:"isPublic"`
}

func (h *FilesHandler) Create(c *fiber.Ctx) error {
	var req createFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := h.files.Create(c.Context(), middleware.CurrentUserID(c), services.CreateRequest{
		Name:     req.Name,
		Type:     models.FileType(req.Type),
		Data:     req.Data,
		ParentID: parentIDString(req.ParentID),
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusCreated, file.ToResponse())
}

func (h *FilesHandler) Show(c *fiber.Ctx) error {
	file, err := h.files.GetByID(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, file.ToResponse())
}

func (h *FilesHandler) Index(c *fiber.Ctx) error {
	page, err := strconv.ParseInt(c.Query("page"), 10, 64)
	if err != nil {
		page = 0
	}

	files, err := h.files.List(c.Context(), middleware.CurrentUserID(c), c.Query("parentId"), page)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, models.ToResponses(files))
}

func (h *FilesHandler) Publish(c *fiber.Ctx) error {
	return h.setPublic(c, true)
}

func (h *FilesHandler) Unpublish(c *fiber.Ctx) error {
	return h.setPublic(c, false)
}

func (h *FilesHandler) setPublic(c *fiber.Ctx, value bool) error {
	file, err := h.files.SetPublic(c.Context(), middleware.CurrentUserID(c), c.Params("id"), value)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, file.ToResponse())
}

// Data serves raw blob content. The route runs behind optional auth: public
// records are readable anonymously, private ones only by their owner.
func (h *FilesHandler) Data(c *fiber.Ctx) error {
	data, mimeType, err := h.files.ReadContent(c.Context(), c.Params("id"), middleware.CurrentUserID(c), c.Query("size"))
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, mimeType)
	return c.Send(data)
}

// parentIDString normalizes the flexible parentId JSON field: clients send
// the root as the number 0, the string "0", or omit it entirely; non-root
// parents arrive as id strings.
func parentIDString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
