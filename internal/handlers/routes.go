package handlers

import (
	"github.com/cleanbook/scheduler-backend/internal/middleware"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth      *AuthHandler
	Bookings  *BookingHandler
	Customers *CustomerHandler
	Employees *EmployeeHandler
}

// RegisterRoutes mounts every API route on api. authMiddleware must resolve
// the caller; administrator routes are additionally guarded by role.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authMiddleware gin.HandlerFunc) {
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/me", authMiddleware, h.Auth.Me)
	}

	bookings := api.Group("/bookings", authMiddleware)
	{
		bookings.GET("", h.Bookings.ListBookings)
		bookings.GET("/:id", h.Bookings.GetBooking)
		bookings.POST("", requireAdmin, h.Bookings.CreateBooking)
		bookings.PUT("/:id", requireAdmin, h.Bookings.UpdateBooking)
		bookings.DELETE("/:id", requireAdmin, h.Bookings.DeleteBooking)
		bookings.PUT("/:id/cleaners", requireAdmin, h.Bookings.SyncCleaners)
	}

	customers := api.Group("/customers", authMiddleware, requireAdmin)
	{
		customers.GET("", h.Customers.ListCustomers)
		customers.GET("/:id", h.Customers.GetCustomer)
		customers.GET("/:id/bookings", h.Customers.ListCustomerBookings)
		customers.POST("", h.Customers.RegisterCustomer)
		customers.PUT("/:id", h.Customers.UpdateCustomer)
		customers.DELETE("/:id", h.Customers.DeleteCustomer)
	}

	employees := api.Group("/employees", authMiddleware, requireAdmin)
	{
		employees.GET("", h.Employees.ListEmployees)
		employees.GET("/:id", h.Employees.GetEmployee)
		employees.POST("", h.Employees.ProvisionEmployee)
		employees.PUT("/:id", h.Employees.UpdateEmployee)
		employees.DELETE("/:id", h.Employees.DeleteEmployee)
	}

	api.GET("/roles", authMiddleware, requireAdmin, h.Employees.ListRoles)
}
