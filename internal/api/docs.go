package api

import "net/http"

// serveOpenAPIDoc serves the OpenAPI document backing the Swagger UI.
func serveOpenAPIDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(openAPIDoc))
}

const openAPIDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "Top Scores API",
    "description": "Live football scores, user preferences, notifications and the match predictor.",
    "version": "2.0.0"
  },
  "basePath": "/",
  "paths": {
    "/api/v1/healthcheck": {
      "get": {
        "tags": ["health"],
        "summary": "Health check",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/user/{deviceId}/matches/fixtures": {
      "get": {
        "tags": ["user"],
        "summary": "Fixtures of interest for a device",
        "produces": ["application/json"],
        "parameters": [{"name": "deviceId", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/user/{deviceId}/matches/results": {
      "get": {
        "tags": ["user"],
        "summary": "Results of interest for a device",
        "produces": ["application/json"],
        "parameters": [{"name": "deviceId", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/user/{deviceId}/preferences": {
      "get": {
        "tags": ["user"],
        "summary": "Preferences for a device",
        "produces": ["application/json"],
        "parameters": [{"name": "deviceId", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      },
      "put": {
        "tags": ["user"],
        "summary": "Update preferences for a device",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"name": "deviceId", "in": "path", "required": true, "type": "string"},
          {"name": "preferences", "in": "body", "required": true, "schema": {"type": "object"}}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}
      }
    },
    "/api/v1/predictor/init": {
      "post": {
        "tags": ["predictor"],
        "summary": "Start a predicted match",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}
      }
    },
    "/api/v1/predictor/pause": {
      "post": {
        "tags": ["predictor"],
        "summary": "Pause a predicted match",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}
      }
    },
    "/api/v1/predictor/resume": {
      "post": {
        "tags": ["predictor"],
        "summary": "Resume a predicted match",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}
      }
    },
    "/api/v1/debug/matches/all": {
      "get": {
        "tags": ["debug"],
        "summary": "All tracked matches",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/debug/match/{id}": {
      "get": {
        "tags": ["debug"],
        "summary": "One tracked match",
        "produces": ["application/json"],
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
      }
    },
    "/api/v1/debug/match/{id}/interested": {
      "get": {
        "tags": ["debug"],
        "summary": "Interested devices for a match",
        "produces": ["application/json"],
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/debug/notifications": {
      "get": {
        "tags": ["debug"],
        "summary": "Recent notification envelopes",
        "produces": ["application/json"],
        "parameters": [{"name": "limit", "in": "query", "type": "integer"}],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/debug/notifications/test/user/{deviceId}": {
      "post": {
        "tags": ["debug"],
        "summary": "Send a test notification",
        "produces": ["application/json"],
        "parameters": [{"name": "deviceId", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/debug/teams": {
      "get": {
        "tags": ["debug"],
        "summary": "Known teams by category",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/debug/teams/top": {
      "get": {
        "tags": ["debug"],
        "summary": "Top teams",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/api/v1/debug/parseInfo": {
      "get": {
        "tags": ["debug"],
        "summary": "Feed parse bookkeeping",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}}
      }
    }
  }
}`
