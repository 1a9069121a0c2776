package router

import (
	bridgectrl "github.com/dropDatabas3/steambridge/internal/http/controllers/bridge"
	mw "github.com/dropDatabas3/steambridge/internal/http/middlewares"
	"github.com/go-chi/chi/v5"
)

// RegisterBridgeRoutes registra authorize, callback, token y userinfo.
func RegisterBridgeRoutes(r chi.Router, c *bridgectrl.Controller) {
	r.Use(mw.WithLogging())

	r.Get("/authorize", c.Authorize)
	r.Get("/callback", c.Callback)

	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Post("/token", c.Token)
		r.Get("/userinfo", c.UserInfo)
	})
}
