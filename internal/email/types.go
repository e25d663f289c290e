package email

// Attachment представляет вложение в email
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Email представляет структуру email сообщения
type Email struct {
	From        string
	FromName    string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}

// Имена встроенных шаблонов
const (
	TemplatePropertyApproved      = "property_approved"
	TemplateBlogPublished         = "blog_published"
	TemplateInquiryResponded      = "inquiry_responded"
	TemplateConsultationResponded = "consultation_responded"
	TemplateWelcome               = "welcome"
)
