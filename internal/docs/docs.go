// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Formato de swag init; regenerar con `swag init -g cmd/api/main.go -o internal/docs`.
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
        "/health": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Liveness",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/users": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Listar usuarios (staff)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/users/me": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Perfil propio",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Registrar perfil propio",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/pets": {
            "get": {
                "tags": [
                    "pets"
                ],
                "summary": "Listar mascotas (scope=all requiere staff)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "scope",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "post": {
                "tags": [
                    "pets"
                ],
                "summary": "Crear mascota",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/pets/{petID}": {
            "get": {
                "tags": [
                    "pets"
                ],
                "summary": "Obtener mascota",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "patch": {
                "tags": [
                    "pets"
                ],
                "summary": "Actualizar mascota",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "tags": [
                    "pets"
                ],
                "summary": "Borrar mascota",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/pets/{petID}/health-records": {
            "get": {
                "tags": [
                    "health-records"
                ],
                "summary": "Listar historial clínico",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "post": {
                "tags": [
                    "health-records"
                ],
                "summary": "Agregar registro clínico",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/pets/{petID}/health-records/{recordID}": {
            "delete": {
                "tags": [
                    "health-records"
                ],
                "summary": "Borrar registro clínico",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "petID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "recordID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/appointments": {
            "get": {
                "tags": [
                    "appointments"
                ],
                "summary": "Listar turnos (scope=all requiere staff)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "scope",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "post": {
                "tags": [
                    "appointments"
                ],
                "summary": "Agendar turno",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/appointments/{appointmentID}": {
            "get": {
                "tags": [
                    "appointments"
                ],
                "summary": "Obtener turno",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "appointmentID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "patch": {
                "tags": [
                    "appointments"
                ],
                "summary": "Actualizar turno",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "appointmentID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/schedule/slots": {
            "get": {
                "tags": [
                    "schedule"
                ],
                "summary": "Grilla de turnos del día",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "date",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/schedule/availability": {
            "get": {
                "tags": [
                    "schedule"
                ],
                "summary": "Consultar disponibilidad",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "at",
                        "in": "query",
                        "required": false
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/blocks": {
            "get": {
                "tags": [
                    "blocks"
                ],
                "summary": "Listar días bloqueados",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            },
            "post": {
                "tags": [
                    "blocks"
                ],
                "summary": "Bloquear un día",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/blocks/{date}": {
            "delete": {
                "tags": [
                    "blocks"
                ],
                "summary": "Desbloquear un día",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "date",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/reminders": {
            "get": {
                "tags": [
                    "reminders"
                ],
                "summary": "Recordatorios del usuario",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/reminders/{reminderID}/dismiss": {
            "post": {
                "tags": [
                    "reminders"
                ],
                "summary": "Descartar recordatorio",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "reminderID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": [
                    "dashboard"
                ],
                "summary": "Resumen para staff",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
            }
        },
        "/admin/index-audit": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Auditoría de índices (admin)",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ]
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
	Title:            "Pet Clinic Scheduling API",
	Description:      "Turnos, recordatorios e historial clínico de la clínica veterinaria.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
