// Package docs provides Swagger documentation for the API.
package docs

// @title Doe Agora API
// @version 1.0
// @description API for the Doe Agora donation campaign platform

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
