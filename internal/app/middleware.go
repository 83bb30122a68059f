package app

import (
	httpMW "github.com/angelo-odois/postangelo-sub000/internal/http/middleware"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey, cfg.JWTIssuer),
	}
}
