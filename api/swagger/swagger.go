package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Session Feedback API",
        "description": "Anonymous student feedback collection for teacher sessions",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Sessions", "description": "Session lifecycle and discovery"},
        {"name": "Students", "description": "Student-side session actions"},
        {"name": "Feedback", "description": "Teacher-side feedback aggregation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "UP"}
                }
            }
        },
        "/teacher/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a teacher account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing fields"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/teacher/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in as a teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/student/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing fields"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/student/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in as a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/session/create-session": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Create a feedback session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing date"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/session/get-session": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions owned by the acting teacher",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/session/get-all-sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List every session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session/get-student-sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions the acting student has joined",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/session/get-feedback": {
            "get": {
                "tags": ["Feedback"],
                "summary": "List anonymous feedback for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found"}
                }
            }
        },
        "/session/get-rating": {
            "get": {
                "tags": ["Feedback"],
                "summary": "Get the mean rating for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RatingSummary"}},
                    "404": {"description": "Session not found"}
                }
            }
        },
        "/session/no-feedback": {
            "get": {
                "tags": ["Feedback"],
                "summary": "List enrolled students who have not submitted feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing session id"},
                    "404": {"description": "Session not found"}
                }
            }
        },
        "/session/export-feedback": {
            "get": {
                "tags": ["Feedback"],
                "summary": "Download a session's feedback as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "404": {"description": "Session not found"}
                }
            }
        },
        "/student/join-session": {
            "post": {
                "tags": ["Students"],
                "summary": "Join a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/JoinSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found"},
                    "409": {"description": "Already joined"}
                }
            }
        },
        "/student/submit-feedback": {
            "post": {
                "tags": ["Students"],
                "summary": "Submit anonymous feedback for a joined session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitFeedbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not part of the session"},
                    "409": {"description": "Feedback already submitted"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["name", "email", "password"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "description": "RFC 3339 timestamp or YYYY-MM-DD date"}
            },
            "required": ["date"]
        },
        "JoinSessionRequest": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"}
            },
            "required": ["sessionId"]
        },
        "SubmitFeedbackRequest": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "rating": {"type": "integer"},
                "feedback": {"type": "string"}
            },
            "required": ["sessionId", "rating", "feedback"]
        },
        "RatingSummary": {
            "type": "object",
            "properties": {
                "totalRating": {"type": "number", "x-nullable": true},
                "count": {"type": "integer"}
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
                "error": {"$ref": "#/definitions/APIError"}
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
