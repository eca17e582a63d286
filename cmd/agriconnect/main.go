package main

import (
	"context"
	"log/slog"
	"os"

	"agriconnect/config"
	"agriconnect/internal/delivery"
	"agriconnect/internal/delivery/http"
	"agriconnect/internal/delivery/http/middleware"
	"agriconnect/internal/delivery/http/router/handler"
	"agriconnect/internal/domain/service"
	"agriconnect/internal/infra/auth"
	"agriconnect/internal/infra/auth/firebase"
	"agriconnect/internal/infra/geocode"
	"agriconnect/internal/infra/geoindex"
	logs "agriconnect/internal/infra/log"
	"agriconnect/internal/infra/persistence/postgres"
	"agriconnect/internal/infra/pubsub"
	"agriconnect/internal/infra/qrcode"
	"agriconnect/internal/infra/storage"
	"agriconnect/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
		),
		pubsub.Module,
		geocode.Module,
		geoindex.Module,
		storage.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewOtpRepository,
			postgres.NewProfileRepository,
			postgres.NewListingRepository,
			postgres.NewBidRepository,
			postgres.NewEquipmentRepository,
			postgres.NewNotificationRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			firebase.NewPhoneVerifier,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection.
// A missing section falls back to the built-in defaults.
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	return qrcode.NewQRCodeService(cfg.QRCode)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewLocationService,
			impl.NewListingService,
			impl.NewBidService,
			impl.NewEquipmentService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewLocationHandler,
			handler.NewListingHandler,
			handler.NewBidHandler,
			handler.NewEquipmentHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
