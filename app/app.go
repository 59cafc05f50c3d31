package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/danschewy/lexiform/config"
	"github.com/danschewy/lexiform/llm"
)

// App bundles the process-wide collaborators. It is handed explicitly to
// every handler constructor; nothing in here is reachable through package
// globals.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	Assistant *llm.Client
}
