// Package docs registers the OpenAPI description of the frontend's JSON endpoints.
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
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.HealthDTO"}
                    }
                }
            }
        },
        "/register/status": {
            "get": {
                "description": "Live countdown and state of the visitor's registration form",
                "produces": ["application/json"],
                "tags": ["registration"],
                "summary": "Registration form status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.RegistrationStatusDTO"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}
                    }
                }
            }
        },
        "/admin/export/{type}": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["admin"],
                "summary": "Export a data set as CSV",
                "parameters": [
                    {
                        "type": "string",
                        "description": "users, profiles or feedback",
                        "name": "type",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "file"}
                    },
                    "303": {
                        "description": "Redirect back to the export tab with an error alert"
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponseDTO": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "session_expired"}
            }
        },
        "dto.HealthDTO": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "visitors": {"type": "integer", "example": 3}
            }
        },
        "dto.RegistrationStatusDTO": {
            "type": "object",
            "properties": {
                "can_send": {"type": "boolean", "example": false},
                "remaining_seconds": {"type": "integer", "example": 42},
                "resend_label": {"type": "string", "example": "Resend in 42s"},
                "state": {"type": "string", "example": "otp_sent"},
                "verified": {"type": "boolean", "example": false}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "District Growth Web",
	Description:      "Server-rendered frontend of the district professional directory",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
