// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/jobs": {
            "get": {"tags": ["jobs"], "summary": "List jobs", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "posterId", "in": "query"},
                    {"type": "string", "name": "workerId", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.Job"}}}}},
            "post": {"tags": ["jobs"], "summary": "Post a job", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.JobDraft"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/entity.Job"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.apiError"}}}}
        },
        "/jobs/{id}": {
            "get": {"tags": ["jobs"], "summary": "Get job by id", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.Job"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.apiError"}}}},
            "patch": {"tags": ["jobs"], "summary": "Edit a job", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.Job"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httptransport.apiError"}}}}
        },
        "/jobs/{id}/payment": {"post": {"tags": ["jobs"], "summary": "Pay for a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/jobs/{id}/start": {"post": {"tags": ["jobs"], "summary": "Start an assigned job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/jobs/{id}/complete": {"post": {"tags": ["jobs"], "summary": "Complete a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/jobs/{id}/cancel": {"post": {"tags": ["jobs"], "summary": "Cancel a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/jobs/{id}/receipt": {"get": {"tags": ["jobs"], "summary": "Payment receipt of a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/tasks": {"get": {"tags": ["tasks"], "summary": "Tasks of a job, ordered by position", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/tasks/batch": {"post": {"tags": ["tasks"], "summary": "Append tasks to a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}},
        "/jobs/{id}/applications": {"get": {"tags": ["applications"], "summary": "Applications of a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/reviews": {"get": {"tags": ["reviews"], "summary": "Reviews of a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/applications": {
            "get": {"tags": ["applications"], "summary": "Applications of a worker", "parameters": [{"type": "string", "name": "workerId", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["applications"], "summary": "Apply to an open job", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "412": {"description": "Precondition Failed"}}}
        },
        "/applications/{id}/status": {"patch": {"tags": ["applications"], "summary": "Accept or reject an application", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/tasks": {"post": {"tags": ["tasks"], "summary": "Add a task to a job", "responses": {"201": {"description": "Created"}}}},
        "/tasks/{id}": {
            "patch": {"tags": ["tasks"], "summary": "Edit a task", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["tasks"], "summary": "Delete a task", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/tasks/{id}/complete": {"post": {"tags": ["tasks"], "summary": "Mark a task done", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/tasks/job/{jobId}/reorder": {"post": {"tags": ["tasks"], "summary": "Reorder the tasks of a job", "parameters": [{"type": "string", "name": "jobId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/tasks/job/{jobId}/complete": {"post": {"tags": ["tasks"], "summary": "Mark several tasks done", "parameters": [{"type": "string", "name": "jobId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/reviews": {"post": {"tags": ["reviews"], "summary": "Review the other party of a completed job", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/users/{id}/reviews": {"get": {"tags": ["reviews"], "summary": "Reviews received by a user, with the average rating", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/earnings": {"get": {"tags": ["payouts"], "summary": "Earnings of a worker", "parameters": [{"type": "string", "name": "workerId", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/payouts/accounts": {"post": {"tags": ["payouts"], "summary": "Create the worker's connected payout account", "responses": {"201": {"description": "Created"}, "502": {"description": "Bad Gateway"}}}},
        "/payouts/accounts/{workerId}": {"get": {"tags": ["payouts"], "summary": "Connected account status of a worker", "parameters": [{"type": "string", "name": "workerId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/payouts/accounts/{workerId}/link": {"post": {"tags": ["payouts"], "summary": "Onboarding link for the worker's connected account", "parameters": [{"type": "string", "name": "workerId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "httptransport.apiError": {"type": "object", "properties": {"message": {"type": "string"}}},
        "entity.Job": {"type": "object", "properties": {
            "id": {"type": "string"}, "title": {"type": "string"}, "description": {"type": "string"},
            "category": {"type": "string"}, "paymentType": {"type": "string", "enum": ["hourly", "fixed"]},
            "paymentAmount": {"type": "string"}, "serviceFee": {"type": "string"}, "totalAmount": {"type": "string"},
            "posterId": {"type": "string"}, "workerId": {"type": "string"},
            "status": {"type": "string", "enum": ["pending_payment", "payment_failed", "open", "assigned", "in_progress", "completed", "canceled"]},
            "location": {"type": "string"}, "dateNeeded": {"type": "string"}, "datePosted": {"type": "string"},
            "dateCompleted": {"type": "string"}, "requiredSkills": {"type": "array", "items": {"type": "string"}},
            "equipmentProvided": {"type": "boolean"}, "paymentIntentId": {"type": "string"}, "paymentAttempts": {"type": "integer"}, "updatedAt": {"type": "string"}
        }},
        "service.JobDraft": {"type": "object", "required": ["title", "category", "paymentType"], "properties": {
            "title": {"type": "string"}, "description": {"type": "string"}, "category": {"type": "string"},
            "paymentType": {"type": "string"}, "paymentAmount": {"type": "string"}, "posterId": {"type": "string"},
            "location": {"type": "string"}, "dateNeeded": {"type": "string"},
            "requiredSkills": {"type": "array", "items": {"type": "string"}}, "equipmentProvided": {"type": "boolean"},
            "tasks": {"type": "array", "items": {"type": "object"}}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gig Marketplace API",
	Description:      "Jobs, applications, task checklists, payments and worker payouts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
