// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"agriconnect/internal/delivery/http/middleware"
	"agriconnect/internal/delivery/http/router/handler"
	"agriconnect/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds all handlers that need to be registered, injected by Fx.
type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	LocationHandler  *handler.LocationHandler
	ListingHandler   *handler.ListingHandler
	BidHandler       *handler.BidHandler
	EquipmentHandler *handler.EquipmentHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	locationHandler  *handler.LocationHandler
	listingHandler   *handler.ListingHandler
	bidHandler       *handler.BidHandler
	equipmentHandler *handler.EquipmentHandler
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		locationHandler:  params.LocationHandler,
		listingHandler:   params.ListingHandler,
		bidHandler:       params.BidHandler,
		equipmentHandler: params.EquipmentHandler,
		authMiddleware:   params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes are public
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/send-otp", r.authHandler.SendOtp)
		authGroup.POST("/verify-otp", r.authHandler.VerifyOtp)
		authGroup.POST("/firebase", r.authHandler.FirebaseLogin)
		authGroup.POST("/refresh", r.authHandler.Refresh)
	}

	// Location profile routes for any authenticated role
	locationGroup := e.Group("/location")
	locationGroup.Use(r.authMiddleware.Authenticate)
	{
		locationGroup.GET("", r.locationHandler.GetProfile)
		locationGroup.PUT("", r.locationHandler.UpdateProfile)
		locationGroup.POST("/resolve", r.locationHandler.ResolveCoordinates)
	}

	// Listing routes; writes require the farmer role
	listingGroup := e.Group("/listings")
	listingGroup.Use(r.authMiddleware.Authenticate)
	{
		listingGroup.GET("", r.listingHandler.ListListings)
		listingGroup.GET("/:id", r.listingHandler.GetListing)
		listingGroup.GET("/:id/qr", r.listingHandler.ShareQR)

		farmerOnly := r.authMiddleware.RequireRole(entity.RoleFarmer)
		listingGroup.POST("", r.listingHandler.CreateListing, farmerOnly)
		listingGroup.DELETE("/:id", r.listingHandler.DeleteListing, farmerOnly)
		listingGroup.POST("/:id/photo", r.listingHandler.AttachPhoto, farmerOnly)
		listingGroup.GET("/:id/bids", r.bidHandler.ListForListing, farmerOnly)

		listingGroup.POST("/:id/bids", r.bidHandler.PlaceBid, r.authMiddleware.RequireRole(entity.RoleBuyer))
	}

	// Buyers review their own bids here
	bidGroup := e.Group("/bids")
	bidGroup.Use(r.authMiddleware.Authenticate)
	bidGroup.Use(r.authMiddleware.RequireRole(entity.RoleBuyer))
	{
		bidGroup.GET("/mine", r.bidHandler.ListMine)
	}

	// Farmers review their bid alerts here
	notificationGroup := e.Group("/notifications")
	notificationGroup.Use(r.authMiddleware.Authenticate)
	notificationGroup.Use(r.authMiddleware.RequireRole(entity.RoleFarmer))
	{
		notificationGroup.GET("", r.bidHandler.ListNotifications)
	}

	// Equipment routes; offering requires the farmer role
	equipmentGroup := e.Group("/equipment")
	equipmentGroup.Use(r.authMiddleware.Authenticate)
	{
		equipmentGroup.GET("", r.equipmentHandler.ListEquipment)
		equipmentGroup.POST("", r.equipmentHandler.CreateEquipment, r.authMiddleware.RequireRole(entity.RoleFarmer))
	}
}
