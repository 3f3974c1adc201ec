package router

import (
	"github.com/aurora-mobile/aurora-auth/internal/application"
	"github.com/aurora-mobile/aurora-auth/internal/container"
	pginfra "github.com/aurora-mobile/aurora-auth/internal/infrastructure/postgres"
	handlers "github.com/aurora-mobile/aurora-auth/internal/interface/http"
	"github.com/aurora-mobile/aurora-auth/internal/router/modules"
)

// InitModules builds the application services from the container singletons
// and registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	principals := pginfra.NewPrincipalRepository(container.GetPGPool())
	profiles := pginfra.NewProfileRepository(container.GetPGPool())

	authSvc := &application.AuthService{
		Principals: principals,
		JWT:        container.GetJWT(),
		Redis:      container.GetRedis(),
		Publisher:  container.GetRabbitPub(),
		Logger:     logger,
		AppName:    cfg.AppName,
		OTPTTL:     cfg.OTPTTL,
		SessionTTL: cfg.SessionTTL,
	}
	profileSvc := &application.ProfileService{
		Profiles:        profiles,
		Logger:          logger,
		ES:              container.GetES(),
		ESProfilesIndex: cfg.ESProfilesIndex,
	}

	authHandler := handlers.NewAuthHandler(authSvc, profileSvc, logger)
	profileHandler := handlers.NewProfileHandler(profileSvc, logger)
	billingHandler := handlers.NewBillingHandler(container.GetBilling(), logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewProfileModule(profileHandler, cfg.ServiceAPIKey))
	r.Add(modules.NewBillingModule(billingHandler, container.GetJWT()))
}
