// Package docs NoteShare API
//
// @title  NoteShare API
// @version 0.1.0
// @description Study note sharing: feed search, ratings, comments, a study assistant and live feed events.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

//go:generate swag init -g docs/swagger.go -d ../ -o . --parseInternal

import (
	_ "noteshare/cmd/server/handlers/httperr"
	_ "noteshare/internal/services/assistant"
	_ "noteshare/internal/services/auth"
	_ "noteshare/internal/services/notes"
)
