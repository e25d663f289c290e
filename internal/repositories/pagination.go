package repositories

import "gorm.io/gorm"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Paging - параметры постраничной выборки (page начинается с 1)
type Paging struct {
	Page    int
	PerPage int
}

// Normalize приводит значения к допустимым
func (p Paging) Normalize() Paging {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Paging) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// paginate применяет limit/offset к запросу
func paginate(query *gorm.DB, p Paging) *gorm.DB {
	p = p.Normalize()
	return query.Limit(p.PerPage).Offset(p.Offset())
}

// likePattern - шаблон для поиска подстроки без учета регистра
func likePattern(s string) string {
	return "%" + s + "%"
}
