// Package docs регистрирует swagger-описание API; пути дополняются `swag init -g cmd/web/main.go`
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["platform"],
                "summary": "Проверка состояния",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/properties": {
            "get": {
                "produces": ["application/json"],
                "tags": ["properties"],
                "summary": "Опубликованные объекты",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/properties/{id}/approve": {
            "post": {
                "produces": ["application/json"],
                "tags": ["properties"],
                "summary": "Одобрить объект",
                "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Estate API",
	Description:      "REST API маркетплейса недвижимости: объекты, модерация, блог, заявки, уведомления.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
