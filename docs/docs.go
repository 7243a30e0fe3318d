// Package docs holds the OpenAPI document served under /swagger. Regenerate with
// `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/dashboard": {
            "get": {
                "description": "Pet and visit totals plus the five most recent visits, optionally bounded by visit date.",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.dashboardResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "description": "Form fields identifier (username or email) and password. Rotates the session on success.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "responses": {
                    "303": {"description": "redirect to /dashboard", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.FormErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.FormErrorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {
                    "303": {"description": "redirect to /login", "schema": {"type": "string"}}
                }
            }
        },
        "/pets": {
            "get": {
                "description": "Pets of the signed-in owner. Admins see every pet.",
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "List pets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.listPetsResponse"}},
                    "303": {"description": "redirect to /login when signed out", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Form fields name (required), species, breed, birth_date (YYYY-MM-DD), gender, notes and an optional photo file (JPG, PNG or WEBP, 2 MB max).",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Create a pet",
                "responses": {
                    "303": {"description": "redirect to /pets", "schema": {"type": "string"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.FormErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httpx.MessageResponse"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "description": "The pet and its visits, newest first. Missing pets and pets of other owners both redirect to /pets with the same message.",
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Pet profile",
                "parameters": [
                    {"type": "integer", "description": "Pet ID", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/visits.petProfileResponse"}},
                    "303": {"description": "redirect to /pets", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/visits": {
            "post": {
                "description": "Form fields visit_date (YYYY-MM-DD, required), type, description.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Add a visit",
                "parameters": [
                    {"type": "integer", "description": "Pet ID", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "303": {"description": "redirect to /pets/{petID}", "schema": {"type": "string"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.FormErrorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Form fields username, email, password, confirm_password.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an owner account",
                "responses": {
                    "303": {"description": "redirect to /login", "schema": {"type": "string"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpx.FormErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.FormErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dashboard.dashboardResponse": {
            "type": "object",
            "properties": {
                "flash": {"type": "string"},
                "username": {"type": "string"},
                "total_pets": {"type": "integer"},
                "total_visits": {"type": "integer"},
                "recent_visits": {"type": "array", "items": {"$ref": "#/definitions/visits.VisitResponse"}},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"}
            }
        },
        "httpx.FormErrorResponse": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"type": "string"}},
                "old": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "httpx.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "pets.PetResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "owner_user_id": {"type": "integer"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "birth_date": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female", "unknown"]},
                "photo_url": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "pets.listPetsResponse": {
            "type": "object",
            "properties": {
                "flash": {"type": "string"},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/pets.PetResponse"}}
            }
        },
        "visits.VisitResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "pet_id": {"type": "integer"},
                "visit_date": {"type": "string"},
                "type": {"type": "string"},
                "description": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "visits.petProfileResponse": {
            "type": "object",
            "properties": {
                "flash": {"type": "string"},
                "pet": {"$ref": "#/definitions/pets.PetResponse"},
                "visits": {"type": "array", "items": {"$ref": "#/definitions/visits.VisitResponse"}}
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
	Title:            "pethouse API",
	Description:      "Pet owners keep their pets and veterinary visits. Session cookie authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
