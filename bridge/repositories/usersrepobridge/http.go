// Package usersrepobridge exposes the user directory over HTTP.
package usersrepobridge

import (
	"github.com/jrazmi/userdir/infrastructure/web"
)

// Config holds configuration for the User bridge
type Config struct {
	Repository Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for User
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	users := group.Group("/users", cfg.Middleware...)

	users.GET("", b.httpList)
	users.POST("", b.httpCreate)
	users.GET("/{user_id}", b.httpGetByID)
	users.PATCH("/{user_id}", b.httpUpdate)
	users.DELETE("/{user_id}", b.byID(b.userRepository.SoftDelete))
	users.POST("/{user_id}/restore", b.byID(b.userRepository.Restore))
	users.DELETE("/{user_id}/permanent", b.byID(b.userRepository.Delete))
}
