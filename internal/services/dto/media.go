package dto

// BrokenImage - ссылка на изображение, файла которого нет ни в хранилище, ни в public
type BrokenImage struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Field    string `json:"field"`
	Path     string `json:"path"`
}

type BrokenImagesResponse struct {
	Category string        `json:"category"`
	Count    int           `json:"count"`
	Items    []BrokenImage `json:"items"`
}

type BrokenImagesQuery struct {
	Category string `form:"category" validate:"required,is-media-category"`
}

// RepairRequest - замена битых ссылок на default_image или загруженный файл
type RepairRequest struct {
	Category     string `json:"category" form:"category" validate:"required,is-media-category"`
	DefaultImage string `json:"default_image" form:"default_image" validate:"omitempty,max=1000"`

	File *UploadedFile `json:"-" form:"-"`
}

type RepairItemRequest struct {
	Path         string `json:"path" form:"path" validate:"omitempty,max=1000"`
	DefaultImage string `json:"default_image" form:"default_image" validate:"omitempty,max=1000"`

	File *UploadedFile `json:"-" form:"-"`
}

type RepairResult struct {
	Category string   `json:"category"`
	Scanned  int      `json:"scanned"`
	Broken   int      `json:"broken"`
	Repaired int      `json:"repaired"`
	Failed   int      `json:"failed"`
	Items    []string `json:"items"` // id исправленных записей
}
