// Package docs holds the OpenAPI description served at /swagger.
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
        "/extract": {
            "post": {
                "description": "Upload a CSV with id, created_at, image_url and comment columns. Each image is read by the\nvision model and the extracted fields are appended to the row.",
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "text/csv"
                ],
                "tags": [
                    "extract"
                ],
                "summary": "Enrich a business-card sheet",
                "parameters": [
                    {
                        "type": "file",
                        "description": "CSV file with id, created_at, image_url, comment columns",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Output format: csv (default) or xlsx",
                        "name": "format",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Enriched sheet as an attachment",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Missing file or unsupported format",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "413": {
                        "description": "Upload too large",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "422": {
                        "description": "Header lacks a required column",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "500": {
                        "description": "Upload could not be read",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "error": {
                    "$ref": "#/definitions/handler.APIError"
                },
                "success": {
                    "type": "boolean",
                    "example": false
                }
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "fields": {
                    "type": "string",
                    "example": "full"
                },
                "provider": {
                    "type": "string",
                    "example": "openai"
                },
                "status": {
                    "type": "string",
                    "example": "ok"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "cardenrich API",
	Description:      "Enriches business-card sheets with fields read from each card image.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
