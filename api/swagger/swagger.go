package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ChungangLions Partnership API",
        "description": "Proposal brokering between student councils and business owners",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Account registration and token management"},
        {"name": "Proposals", "description": "Partnership proposal lifecycle and status ledger"},
        {"name": "Relationships", "description": "Like and recommend toggles"},
        {"name": "Profiles", "description": "Read-only profile views"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/proposals": {
            "get": {
                "tags": ["Proposals"],
                "summary": "List proposals",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "box", "in": "query", "type": "string", "enum": ["all", "inbox", "sent"]},
                    {"name": "status", "in": "query", "type": "string", "enum": ["UNREAD", "READ", "PARTNERSHIP", "REJECTED"]},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Proposals"],
                "summary": "Create proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProposalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Role conflict"}
                }
            }
        },
        "/proposals/draft": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Generate AI proposal draft",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Drafts disabled"}
                }
            }
        },
        "/proposals/export": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Export proposal listing as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/proposals/{id}": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Get proposal detail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Proposals"],
                "summary": "Update proposal content",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No longer editable"},
                    "403": {"description": "Not the author"}
                }
            },
            "delete": {
                "tags": ["Proposals"],
                "summary": "Delete proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Not the author"}
                }
            }
        },
        "/proposals/{id}/status": {
            "patch": {
                "tags": ["Proposals"],
                "summary": "Change proposal status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid transition"},
                    "403": {"description": "Wrong party"}
                }
            }
        },
        "/proposals/{id}/history": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Proposal status history",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/proposals/{id}/export": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Export proposal as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/relationships/toggle": {
            "post": {
                "tags": ["Relationships"],
                "summary": "Toggle a like or recommend signal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleRelationshipRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role conflict"}
                }
            }
        },
        "/relationships/given": {
            "get": {
                "tags": ["Relationships"],
                "summary": "List signals sent by the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "kind", "in": "query", "required": true, "type": "string", "enum": ["LIKE", "RECOMMEND"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/relationships/received": {
            "get": {
                "tags": ["Relationships"],
                "summary": "List signals received by the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "kind", "in": "query", "required": true, "type": "string", "enum": ["LIKE", "RECOMMEND"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles/owners/{id}": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get owner profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/profiles/student-groups/{id}": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get student group profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password", "role"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["OWNER", "STUDENT_GROUP", "STUDENT"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateProposalRequest": {
            "type": "object",
            "required": ["recipient_id", "title", "contents", "contact_info", "apply_target", "benefit_description"],
            "properties": {
                "recipient_id": {"type": "string"},
                "title": {"type": "string"},
                "contents": {"type": "string"},
                "expected_effects": {"type": "string"},
                "contact_info": {"type": "string"},
                "partnership_types": {"type": "array", "items": {"type": "string", "enum": ["DISCOUNT", "REVIEW", "SERVICE", "TIME_SALE"]}},
                "apply_target": {"type": "string", "enum": ["ALL_STUDENTS", "GROUP_MEMBERS", "OTHER"]},
                "apply_target_other": {"type": "string"},
                "time_windows": {"type": "array", "items": {"$ref": "#/definitions/TimeWindow"}},
                "benefit_description": {"type": "string"},
                "period_start": {"type": "string"},
                "period_end": {"type": "string"},
                "ai_generated": {"type": "boolean"}
            }
        },
        "UpdateProposalRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "contents": {"type": "string"},
                "expected_effects": {"type": "string"},
                "contact_info": {"type": "string"},
                "partnership_types": {"type": "array", "items": {"type": "string"}},
                "apply_target": {"type": "string"},
                "apply_target_other": {"type": "string"},
                "time_windows": {"type": "array", "items": {"$ref": "#/definitions/TimeWindow"}},
                "benefit_description": {"type": "string"},
                "period_start": {"type": "string"},
                "period_end": {"type": "string"}
            }
        },
        "ChangeStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["UNREAD", "READ", "PARTNERSHIP", "REJECTED"]},
                "comment": {"type": "string"}
            }
        },
        "DraftRequest": {
            "type": "object",
            "required": ["recipient_id"],
            "properties": {
                "recipient_id": {"type": "string"},
                "contact_info": {"type": "string"}
            }
        },
        "ToggleRelationshipRequest": {
            "type": "object",
            "required": ["target_id", "kind"],
            "properties": {
                "target_id": {"type": "string"},
                "kind": {"type": "string", "enum": ["LIKE", "RECOMMEND"]}
            }
        },
        "TimeWindow": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
