package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the dev backend's OpenAPI document at
// /swagger/doc.json and a Swagger UI page at /swagger/index.html.
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>spa-backend (dev) - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the admin and catalog endpoints the console calls.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "spa-backend (dev)", "version": "v0.1.0" },
  "components": { "securitySchemes": { "cookieAuth": { "type": "apiKey", "in": "cookie", "name": "access_token" } } },
  "paths": {
    "/api/admins/login": {
      "post": {
        "summary": "Log in and receive access_token / refresh_token cookies",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "cookies set" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/admins/verify": {
      "get": { "summary": "Confirm the session", "security": [{"cookieAuth": []}], "responses": { "200": { "description": "session valid" }, "401": { "description": "expired or missing" } } }
    },
    "/api/admins/logout": {
      "post": { "summary": "Revoke the session and clear cookies", "responses": { "200": { "description": "logged out" } } }
    },
    "/refresh-token": {
      "post": { "summary": "Rotate the refresh_token cookie and reissue access_token", "responses": { "200": { "description": "refreshed" }, "401": { "description": "refresh expired" } } }
    },
    "/api/services": {
      "post": { "summary": "Create a service (multipart: name, duration, description, aid, media[])", "security": [{"cookieAuth": []}], "responses": { "201": { "description": "created, returns sid" } } }
    },
    "/api/services/getServices": {
      "get": { "summary": "List active services", "security": [{"cookieAuth": []}], "responses": { "200": { "description": "services" } } }
    },
    "/api/services/inactive": {
      "get": { "summary": "List inactive services", "security": [{"cookieAuth": []}], "responses": { "200": { "description": "services" } } }
    },
    "/api/services/{sid}/reactivate": {
      "patch": { "summary": "Reactivate a service", "security": [{"cookieAuth": []}], "responses": { "200": { "description": "reactivated" }, "404": { "description": "unknown sid" } } }
    },
    "/api/services/{sid}/deactivate": {
      "patch": { "summary": "Deactivate a service", "security": [{"cookieAuth": []}], "responses": { "200": { "description": "deactivated" }, "404": { "description": "unknown sid" } } }
    },
    "/api/services/updateService/{sid}": {
      "put": {
        "summary": "Update a service",
        "security": [{"cookieAuth": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"duration":{"type":"string","example":"60 mins"},"description":{"type":"string"},"aid":{"type":"integer"},"media":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "200": { "description": "updated" } }
      }
    },
    "/api/cloudinary/create-signature": {
      "post": { "summary": "Signed upload credentials", "security": [{"cookieAuth": []}], "responses": { "200": { "description": "signature, timestamp, cloudName, apiKey" } } }
    },
    "/v1_1/{cloud}/auto/upload": {
      "post": { "summary": "Signed media upload (mock host)", "responses": { "200": { "description": "secure_url" } } }
    },
    "/media/{key}": { "get": { "summary": "Stored media object", "responses": { "200": { "description": "object bytes" }, "404": { "description": "unknown key" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } }
  }
}`
