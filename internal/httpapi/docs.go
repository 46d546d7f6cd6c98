package httpapi

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/outline": {
            "post": {
                "tags": ["generate"],
                "summary": "Draft a research paper outline",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.OutlineRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/v1/abstract": {
            "post": {
                "tags": ["generate"],
                "summary": "Draft an abstract from key points",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.AbstractRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/v1/section": {
            "post": {
                "tags": ["generate"],
                "summary": "Draft one paper section",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.SectionRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/v1/literature-review": {
            "post": {
                "tags": ["generate"],
                "summary": "Draft a literature review from paper summaries",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LiteratureReviewRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/v1/key-points": {
            "post": {
                "tags": ["generate"],
                "summary": "Extract key points from text",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.KeyPointsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TextResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/v1/paper": {
            "post": {
                "tags": ["generate"],
                "summary": "Draft a full five-section paper",
                "consumes": ["application/json"],
                "produces": ["application/json", "text/plain"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.PaperRequest"}},
                    {"in": "query", "name": "format", "type": "string", "enum": ["json", "text"], "description": "json (default) or text"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PaperResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "tags": ["ops"],
                "summary": "List local GGUF models",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/status": {
            "get": {
                "tags": ["ops"],
                "summary": "Backend and server status",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/healthz": {"get": {"tags": ["ops"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"tags": ["ops"], "summary": "Backend loaded", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
    },
    "definitions": {
        "types.OutlineRequest": {
            "type": "object",
            "required": ["topic"],
            "properties": {
                "topic": {"type": "string", "example": "Deep Learning in Healthcare"},
                "keywords": {"type": "string", "example": "medical imaging, CNN"}
            }
        },
        "types.AbstractRequest": {
            "type": "object",
            "required": ["topic", "key_points"],
            "properties": {
                "topic": {"type": "string"},
                "key_points": {"type": "string"}
            }
        },
        "types.SectionRequest": {
            "type": "object",
            "required": ["section", "topic"],
            "properties": {
                "section": {"type": "string", "example": "Introduction"},
                "topic": {"type": "string"},
                "title": {"type": "string"},
                "keywords": {"type": "string"},
                "instructions": {"type": "string"}
            }
        },
        "types.LiteratureReviewRequest": {
            "type": "object",
            "required": ["topic", "papers"],
            "properties": {
                "topic": {"type": "string"},
                "papers": {"type": "string"}
            }
        },
        "types.KeyPointsRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {"text": {"type": "string"}}
        },
        "types.PaperRequest": {
            "type": "object",
            "required": ["topic"],
            "properties": {
                "topic": {"type": "string"},
                "title": {"type": "string"},
                "keywords": {"type": "string"},
                "instructions": {"type": "string"}
            }
        },
        "types.TextResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "example": "outline"},
                "text": {"type": "string"}
            }
        },
        "types.SectionText": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "types.PaperResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "example": "paper"},
                "sections": {"type": "array", "items": {"$ref": "#/definitions/types.SectionText"}},
                "full_text": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer"},
                "missing": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.BackendStatus": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "model": {"type": "string"},
                "state": {"type": "string"},
                "last_error": {"type": "string"},
                "queue_len": {"type": "integer"},
                "inflight": {"type": "integer"},
                "max_queue_depth": {"type": "integer"},
                "last_used_unix": {"type": "integer"},
                "loads_total": {"type": "integer"},
                "generations_total": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "backend": {"$ref": "#/definitions/types.BackendStatus"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "paperd API",
	Description:      "HTTP API for drafting research paper outlines, abstracts, sections, literature reviews and full papers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
