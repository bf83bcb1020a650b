// Package docs embeds the OpenAPI description served by the swagger UI.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed swagger.json
var swaggerJSON []byte

func SwaggerJSON() []byte {
	return swaggerJSON
}

// Handler serves the OpenAPI document.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(swaggerJSON)
}
