// Package docs registers the OpenAPI description served at /swagger/*.
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
        "/api/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/share": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["lists"],
                "summary": "Share a list by link",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.shareResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/send-to-user": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["lists"],
                "summary": "Send a list to another user",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sendToUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/get/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lists"],
                "summary": "Get a shared list",
                "parameters": [
                    {"type": "string", "description": "List id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listDataResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/my-lists": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["lists"],
                "summary": "List my lists",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.myListsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/delete-cloud-list/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["lists"],
                "summary": "Delete one of my lists",
                "parameters": [
                    {"type": "string", "description": "List id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/api/search-users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Search users by username prefix",
                "parameters": [
                    {"type": "string", "description": "Username prefix", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.registerRequest": {
            "type": "object",
            "required": ["username", "password", "email"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "username": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "handler.statusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.shareResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "id": {"type": "string"}
            }
        },
        "handler.sendToUserRequest": {
            "type": "object",
            "required": ["username", "list_data"],
            "properties": {
                "username": {"type": "string"},
                "list_data": {"type": "object"}
            }
        },
        "handler.listDataResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "handler.myListsResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "lists": {"type": "array", "items": {"$ref": "#/definitions/domain.ListSummary"}}
            }
        },
        "domain.ListSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "todo-share API",
	Description:      "Share to-do lists by link or send them to other users.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
