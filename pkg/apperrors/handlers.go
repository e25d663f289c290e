package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCodeKey - ключ gin.Context с кодом ошибки ответа (для журнала запросов)
const ErrorCodeKey = "error_code"

// HandleError пишет ошибку в формате API и прерывает цепочку обработчиков.
// Ошибка не из пакета отдается как 500 без текста исходной ошибки.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if err != nil {
		_ = c.Error(err)
	}
	c.Set(ErrorCodeKey, string(appErr.Code))

	// ответ уже начат (например, отдача файла): второй заголовок записать нельзя
	if c.Writer.Written() {
		c.Abort()
		return
	}
	if appErr.HTTPCode == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(appErr.HTTPCode, appErr)
}

// AsAppError ищет *AppError в цепочке err
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if !As(err, &appErr) {
		return nil, false
	}
	return appErr, true
}
