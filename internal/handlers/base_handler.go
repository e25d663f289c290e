package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"estate_backend/internal/logger"
	"estate_backend/internal/middleware"
	"estate_backend/internal/models"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/validator"
	"estate_backend/pkg/apperrors"
	"estate_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
	Auth      *middleware.AuthMiddleware
	// maxUpload - лимит чтения одного файла; больший файл отклоняет проверка изображения
	maxUpload int64
}

func NewBaseHandler(v *validator.Validator, auth *middleware.AuthMiddleware, maxUpload int64) *BaseHandler {
	return &BaseHandler{
		validator: v,
		Auth:      auth,
		maxUpload: maxUpload,
	}
}

// ============================================================================
// 2. DB из контекста
// ============================================================================

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	db, ok := middleware.DBFromContext(c)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", string(contextkeys.DBContextKey))
		// приложение собрано без DBMiddleware
		panic("critical error: DBMiddleware did not set the db key")
	}
	return db
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

// BindAndValidate_JSON привязывает JSON-тело и валидирует
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil && !isEmptyBody(c, err) {
		logger.CtxWithError(ctx, "Failed to bind request body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}
	return h.validate(c, obj)
}

// BindAndValidate_Form - то же для multipart/form-data и urlencoded форм
func (h *BaseHandler) BindAndValidate_Form(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	b := binding.Form
	if isMultipart(c) {
		b = binding.FormMultipart
	}
	if err := c.ShouldBindWith(obj, b); err != nil {
		logger.CtxWithError(ctx, "Failed to bind form", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid form data: "+err.Error()))
		return false
	}
	return h.validate(c, obj)
}

// BindAndValidate_Body выбирает привязку по Content-Type: формы с файлами или JSON
func (h *BaseHandler) BindAndValidate_Body(c *gin.Context, obj interface{}) bool {
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
		return h.BindAndValidate_Form(c, obj)
	default:
		return h.BindAndValidate_JSON(c, obj)
	}
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// пустое JSON-тело допустимо там, где все поля необязательны (валидация решит сама)
func isEmptyBody(c *gin.Context, err error) bool {
	return err == io.EOF && c.Request.ContentLength <= 0
}

// ============================================================================
// 4. Ошибки
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		} else {
			logger.CtxWarn(ctx, "Service error",
				"error", appErr.Message,
				"code", appErr.Code,
				"path", c.Request.URL.Path,
			)
		}
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Пользователь запроса
// ============================================================================

// Actor - пользователь из auth middleware; для анонима нулевое значение
func (h *BaseHandler) Actor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: middleware.GetUserID(c),
		Role:   models.UserRole(middleware.GetRole(c)),
	}
}

func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: userID not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.ErrUnauthenticated)
		return "", false
	}
	return userID, true
}

// ============================================================================
// 6. Файлы multipart
// ============================================================================

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEMultipartPOSTForm
}

// FormFile читает необязательный файл поля; nil, если файла нет
func (h *BaseHandler) FormFile(c *gin.Context, field string) (*dto.UploadedFile, bool) {
	if !isMultipart(c) {
		return nil, true
	}
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, true
		}
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid multipart form: "+err.Error()))
		return nil, false
	}
	file, err := h.readFile(field, header)
	if err != nil {
		apperrors.HandleError(c, apperrors.FieldError(field, "The file failed to upload."))
		return nil, false
	}
	return file, true
}

// FormFiles читает все файлы поля (images[] или images)
func (h *BaseHandler) FormFiles(c *gin.Context, field string) ([]*dto.UploadedFile, bool) {
	if !isMultipart(c) {
		return nil, true
	}
	form, err := c.MultipartForm()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid multipart form: "+err.Error()))
		return nil, false
	}

	headers := append(form.File[field+"[]"], form.File[field]...)
	files := make([]*dto.UploadedFile, 0, len(headers))
	for i, header := range headers {
		name := fmt.Sprintf("%s.%d", field, i)
		file, err := h.readFile(name, header)
		if err != nil {
			apperrors.HandleError(c, apperrors.FieldError(name, "The file failed to upload."))
			return nil, false
		}
		files = append(files, file)
	}
	return files, true
}

func (h *BaseHandler) readFile(field string, header *multipart.FileHeader) (*dto.UploadedFile, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxUpload > 0 {
		// на байт больше лимита: проверка размера увидит превышение
		r = io.LimitReader(f, h.maxUpload+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &dto.UploadedFile{
		Field:       field,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
