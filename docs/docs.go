// Package docs holds the OpenAPI description served at /api/swagger.
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
        "/auth/signup": {
            "post": {
                "description": "Create an account and return a session token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"description": "Signup form", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/service.SignupInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Exchange a username and password for a session token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/server.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/meals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "List all meals",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Meal"}}}
                }
            }
        },
        "/meals/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Get a meal with its ingredients",
                "parameters": [
                    {"type": "integer", "description": "Meal ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MealDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/meals/search/ingredients": {
            "post": {
                "description": "Meals may contain other ingredients too. An empty list returns no meals.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Find meals containing every listed ingredient",
                "parameters": [
                    {"description": "Ingredients", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/server.IngredientSearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Meal"}}}
                }
            }
        },
        "/meals/search/preference": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Find meals carrying a dietary tag",
                "parameters": [
                    {"description": "Preference", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/server.PreferenceSearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Meal"}}}
                }
            }
        },
        "/plan": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Days without any assigned meal are omitted.",
                "produces": ["application/json"],
                "tags": ["plan"],
                "summary": "Get the weekly plan with per-day nutrition totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.DayPlan"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["plan"],
                "summary": "Remove every meal from the plan",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.SlotResponse"}}
                }
            }
        },
        "/plan/slots": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Replaces the meal already in the slot, if any.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["plan"],
                "summary": "Assign a meal to a plan slot",
                "parameters": [
                    {"description": "Slot and meal", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/server.SlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.SlotResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Succeeds even when the slot is already empty.",
                "produces": ["application/json"],
                "tags": ["plan"],
                "summary": "Empty a plan slot",
                "parameters": [
                    {"type": "string", "description": "Day", "name": "day", "in": "query"},
                    {"type": "string", "description": "Meal type", "name": "meal_type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.SlotResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/account": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Get the caller's username and planned meals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AccountSummary"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/test_db": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Check the database connection",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "models.Meal": {
            "type": "object",
            "properties": {
                "meal_id": {"type": "integer"},
                "meal_name": {"type": "string"},
                "description": {"type": "string"},
                "calories": {"type": "integer"},
                "protein_g": {"type": "number"},
                "carbs_g": {"type": "number"},
                "fat_g": {"type": "number"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "image_url": {"type": "string"}
            }
        },
        "models.CompositionLine": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "quantity": {"type": "number"}, "unit": {"type": "string"}}
        },
        "models.MealDetail": {
            "type": "object",
            "allOf": [{"$ref": "#/definitions/models.Meal"}],
            "properties": {"ingredients": {"type": "array", "items": {"$ref": "#/definitions/models.CompositionLine"}}}
        },
        "models.MealSummary": {
            "type": "object",
            "properties": {
                "meal_id": {"type": "integer"},
                "meal_name": {"type": "string"},
                "calories": {"type": "integer"},
                "carbs_g": {"type": "number"},
                "fat_g": {"type": "number"},
                "protein_g": {"type": "number"}
            }
        },
        "models.NutritionTotals": {
            "type": "object",
            "properties": {
                "calories": {"type": "integer"},
                "carbs_g": {"type": "number"},
                "fat_g": {"type": "number"},
                "protein_g": {"type": "number"}
            }
        },
        "models.DayPlan": {
            "type": "object",
            "properties": {
                "meals": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.MealSummary"}},
                "totals": {"$ref": "#/definitions/models.NutritionTotals"}
            }
        },
        "models.PlanEntry": {
            "type": "object",
            "properties": {
                "meal_id": {"type": "integer"},
                "meal_name": {"type": "string"},
                "day": {"type": "string"},
                "meal_type": {"type": "string"}
            }
        },
        "models.AccountSummary": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "meals": {"type": "array", "items": {"$ref": "#/definitions/models.PlanEntry"}}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "service.SignupInput": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirm_password": {"type": "string"}
            }
        },
        "server.LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "server.AuthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "server.IngredientSearchRequest": {
            "type": "object",
            "properties": {"ingredients": {"type": "array", "items": {"type": "string"}}}
        },
        "server.PreferenceSearchRequest": {
            "type": "object",
            "properties": {"preference": {"type": "string"}}
        },
        "server.SlotRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "meal_type": {"type": "string"},
                "meal_id": {"type": "integer"}
            }
        },
        "server.SlotResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Meal Planner API",
	Description:      "Meal search, weekly plans and nutrition totals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
