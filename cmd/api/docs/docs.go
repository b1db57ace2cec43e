// Package docs registers the Swagger document served at /swagger/.
// Regenerate with: swag init -g cmd/api/main.go -o cmd/api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Check if API is alive",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/ocr/extract": {
            "post": {
                "description": "Upload an image (max 4MB), optionally crop it, and transcribe it. The annotated flow adds a context summary and clarifications for ambiguous words.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["OCR"],
                "summary": "Extract text from an uploaded image",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "image", "in": "formData", "required": true},
                    {"type": "string", "description": "text or annotated (default annotated)", "name": "flow", "in": "formData"},
                    {"type": "number", "description": "Crop X in display pixels", "name": "x", "in": "formData"},
                    {"type": "number", "description": "Crop Y in display pixels", "name": "y", "in": "formData"},
                    {"type": "number", "description": "Crop width in display pixels", "name": "width", "in": "formData"},
                    {"type": "number", "description": "Crop height in display pixels", "name": "height", "in": "formData"},
                    {"type": "number", "description": "Native/display width ratio", "name": "scale_x", "in": "formData"},
                    {"type": "number", "description": "Native/display height ratio", "name": "scale_y", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ExtractResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/ocr/extract/raw": {
            "post": {
                "description": "Same as /ocr/extract but the request body is the image itself (drag and drop clients)",
                "consumes": ["image/png", "image/jpeg"],
                "produces": ["application/json"],
                "tags": ["OCR"],
                "summary": "Extract text from a raw image body",
                "parameters": [
                    {"type": "string", "description": "text or annotated (default annotated)", "name": "flow", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ExtractResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/ocr/analyze": {
            "post": {
                "description": "Returns a summary of the image and up to five search suggestions. Nothing is written to history.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["OCR"],
                "summary": "Describe an image and suggest searches",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ExtractResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/ocr/clarify": {
            "post": {
                "description": "Replaces every whole-word, case-insensitive occurrence of originalWord with replacement",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OCR"],
                "summary": "Apply a clarification to a transcription",
                "parameters": [
                    {"description": "Text and chosen replacement", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ClarifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/camera/start": {
            "post": {
                "description": "Releases any open session, then opens a device (rear-facing first)",
                "produces": ["application/json"],
                "tags": ["Camera"],
                "summary": "Open a camera session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.Session"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/camera/preview": {
            "get": {
                "description": "Returns the current frame without ending the session",
                "produces": ["image/jpeg"],
                "tags": ["Camera"],
                "summary": "Latest camera frame",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/camera/capture": {
            "post": {
                "description": "Freezes the next frame, releases the camera, then runs the extraction pipeline on it",
                "produces": ["application/json"],
                "tags": ["Camera"],
                "summary": "Capture a frame and transcribe it",
                "parameters": [
                    {"type": "string", "description": "text or annotated (default annotated)", "name": "flow", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ExtractResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/camera/stop": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Camera"],
                "summary": "Release the camera",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/camera/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Camera"],
                "summary": "Camera status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CameraStatus"}}}
            }
        },
        "/history": {
            "get": {
                "description": "Most recent transcriptions, newest first (at most 50 are kept)",
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "Transcription history",
                "parameters": [
                    {"type": "integer", "description": "Return at most this many records", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/history.Record"}}}
                }
            }
        },
        "/history/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "One history record",
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/history.Record"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/history/{id}/qr": {
            "get": {
                "description": "PNG QR code carrying the record's text, for moving it to a phone",
                "produces": ["image/png"],
                "tags": ["History"],
                "summary": "Transcription as a QR code",
                "parameters": [
                    {"type": "string", "description": "Record ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Image size in pixels (default 256)", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/image": {
            "get": {
                "description": "AI generated banner; an SVG placeholder with status 500 when generation fails",
                "produces": ["image/png", "image/svg+xml"],
                "tags": ["Banner"],
                "summary": "Site banner image",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "capture.Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "device": {"type": "string"},
                "facing": {"type": "string"},
                "started_at": {"type": "string"}
            }
        },
        "handlers.CameraStatus": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "session": {"$ref": "#/definitions/capture.Session"},
                "devices": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.ClarifyRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "originalWord": {"type": "string"},
                "replacement": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "handlers.ExtractResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "result": {"type": "object"},
                "history_id": {"type": "string"},
                "history_error": {"type": "string"},
                "duration_ms": {"type": "integer"}
            }
        },
        "history.Record": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "image": {"type": "string"},
                "text": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Clarity OCR API",
	Description:      "Capture, crop and transcribe images of text, with AI clarifications for ambiguous words",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
