package dto

// UploadedFile - файл из multipart-запроса, прочитанный в память (изображения ограничены upload.max_size)
type UploadedFile struct {
	Field       string // имя поля формы, для сообщений валидации
	Filename    string
	ContentType string
	Data        []byte
}

// PaginationMeta - метаданные постраничного ответа
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// ListResponse - общий формат списков: {"data": [...], "meta": {...}}
type ListResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func NewPaginationMeta(page, perPage int, total int64) PaginationMeta {
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return PaginationMeta{CurrentPage: page, PerPage: perPage, Total: total, LastPage: lastPage}
}

// MessageResponse - простой ответ {"message": "..."}
type MessageResponse struct {
	Message string `json:"message"`
}
