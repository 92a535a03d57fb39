package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Server is running"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness check",
                "description": "Reports whether the ticket file location is usable",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Storage not ready"}
                }
            }
        },
        "/tickets": {
            "get": {
                "tags": ["tickets"],
                "summary": "List tickets",
                "description": "Return the whole ticket collection. An unreadable store is an empty collection.",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/entities.TicketCollection"}
                    }
                }
            },
            "post": {
                "tags": ["tickets"],
                "summary": "Create a ticket",
                "description": "Append a ticket. Fields other than id, customerName, issueType and status are stored as sent.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Ticket data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/entities.Ticket"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "headers": {
                            "X-Ticket-Persisted": {"type": "boolean", "description": "false when the file rewrite failed"}
                        },
                        "schema": {"$ref": "#/definitions/http.CreateTicketResponse"}
                    },
                    "400": {
                        "description": "Missing required fields",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/tickets/{id}": {
            "patch": {
                "tags": ["tickets"],
                "summary": "Update ticket status",
                "description": "Set the status of the first ticket with the given id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true, "description": "Ticket ID"},
                    {
                        "in": "body",
                        "name": "request",
                        "description": "New status",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.UpdateStatusRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.UpdateStatusResponse"}
                    },
                    "400": {
                        "description": "Status is required",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "404": {
                        "description": "Ticket not found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            },
            "delete": {
                "tags": ["tickets"],
                "summary": "Delete a ticket",
                "description": "Remove the first ticket with the given id",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true, "description": "Ticket ID"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.DeleteTicketResponse"}
                    },
                    "404": {
                        "description": "Ticket not found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.Ticket": {
            "type": "object",
            "required": ["id", "customerName", "issueType"],
            "additionalProperties": true,
            "properties": {
                "id": {"type": "string"},
                "customerName": {"type": "string"},
                "issueType": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "entities.TicketCollection": {
            "type": "object",
            "properties": {
                "tickets": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/entities.Ticket"}
                }
            }
        },
        "ports.UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"}
            }
        },
        "http.CreateTicketResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "newTicket": {"$ref": "#/definitions/entities.Ticket"}
            }
        },
        "http.UpdateStatusResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "ticket": {"$ref": "#/definitions/entities.Ticket"}
            }
        },
        "http.DeleteTicketResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "deletedTicket": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/entities.Ticket"}
                }
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
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
	Title:            "ticketd API",
	Description:      "Support ticket store backed by a single JSON file",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
