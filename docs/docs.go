// Package docs holds the OpenAPI document served under /swagger.
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
        "/auth/login/": {
            "post": {
                "description": "Checks credentials and starts a new session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Missing or invalid credentials", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/logout/": {
            "post": {
                "description": "Ends the current session. Requires the X-CSRFToken header.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRFToken", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "No session", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Missing or wrong CSRF token", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/register/": {
            "post": {
                "description": "Creates an account and starts a session. Username defaults to the local part of the email.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {
                        "description": "Registration data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Validation error or user already exists", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/user/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "No session", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/courses/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["courses"],
                "summary": "List courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/courses/{id}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["courses"],
                "summary": "Get course",
                "parameters": [
                    {"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/csrf/": {
            "get": {
                "description": "Issues a CSRF token stored in the session cookie. Send it back in the X-CSRFToken header.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get CSRF token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/lessons/": {
            "get": {
                "description": "Lists lessons without their content",
                "produces": ["application/json"],
                "tags": ["lessons"],
                "summary": "List lessons",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/lessons/{id}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lessons"],
                "summary": "Get lesson",
                "parameters": [
                    {"type": "integer", "description": "Lesson ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/progress/{lessonID}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Get lesson progress",
                "parameters": [
                    {"type": "integer", "description": "Lesson ID", "name": "lessonID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "put": {
                "description": "Partial update of status and video position. Requires the X-CSRFToken header.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Update lesson progress",
                "parameters": [
                    {"type": "integer", "description": "Lesson ID", "name": "lessonID", "in": "path", "required": true},
                    {"type": "string", "description": "CSRF token", "name": "X-CSRFToken", "in": "header", "required": true},
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.UpdateProgressRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/test/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "models.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.ProgressStatus": {
            "type": "string",
            "enum": ["not_started", "in_progress", "completed"]
        },
        "models.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "username": {"type": "string"}
            }
        },
        "models.UpdateProgressRequest": {
            "type": "object",
            "properties": {
                "status": {"$ref": "#/definitions/models.ProgressStatus"},
                "video_progress": {"type": "integer", "minimum": 0}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "School Platform API",
	Description:      "Session-authenticated API for courses, lessons and lesson progress.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
