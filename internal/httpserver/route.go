package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/models"
	pkgdb "github.com/sunu-rekolt/marketplace/pkg/db"
	authmw "github.com/sunu-rekolt/marketplace/pkg/middleware/auth"
	"github.com/sunu-rekolt/marketplace/pkg/middleware/csrf"
	"github.com/sunu-rekolt/marketplace/pkg/middleware/metrics"
	"github.com/sunu-rekolt/marketplace/pkg/middleware/ratelimit"
)

type Deps struct {
	DB *gorm.DB

	Auth          *AuthHTTP
	Profile       *ProfileHTTP
	Catalog       *CatalogHTTP
	Cart          *CartHTTP
	Orders        *OrderHTTP
	Notifications *NotificationHTTP
	Dashboard     *DashboardHTTP

	JWTSecret       []byte
	LoginRatePerMin int
	// MediaDir is served under /storage when set.
	MediaDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.Use(csrf.Middleware(csrf.Config{
		AuthCookie: authmw.AccessCookie,
		SkipPaths:  []string{"/auth/register", "/auth/login", "/auth/refresh"},
	}))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB != nil {
			if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())
	if d.MediaDir != "" {
		e.Static("/storage", d.MediaDir)
	}

	authMW := authmw.NewAuthMiddleware(d.JWTSecret)
	farmer := authMW.RequireRole(models.RoleFarmer)
	buyer := authMW.RequireRole(models.RoleBuyer)

	limiter := ratelimit.NewPerMinute(d.LoginRatePerMin)
	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register, limiter.Limit)
	auth.POST("/login", d.Auth.Login, limiter.Limit)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout, authMW.RequireAuth)

	me := e.Group("/me", authMW.RequireAuth)
	me.GET("", d.Profile.Me)
	me.PATCH("", d.Profile.Patch)
	me.PUT("/push-token", d.Profile.PushToken)
	me.POST("/avatar", d.Profile.Avatar)
	me.POST("/field-picture", d.Profile.FieldPicture)

	products := e.Group("/catalog/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct, optionalAuth(authMW))
	e.GET("/inputs", d.Catalog.Inputs)

	fp := e.Group("/farmer", farmer)
	fp.GET("/products", d.Catalog.FarmerProducts)
	fp.POST("/products", d.Catalog.CreateProduct)
	fp.PATCH("/products/:id", d.Catalog.PatchProduct)
	fp.DELETE("/products/:id", d.Catalog.DeleteProduct)
	fp.POST("/products/:id/archive", d.Catalog.Archive)
	fp.POST("/products/:id/unarchive", d.Catalog.Unarchive)
	fp.POST("/products/:id/image", d.Catalog.UploadImage)
	fp.GET("/orders", d.Orders.FarmerOrders)
	fp.GET("/dashboard/summary", d.Dashboard.Summary)
	fp.GET("/dashboard/monthly-sales", d.Dashboard.MonthlySales)
	fp.GET("/dashboard/top-products", d.Dashboard.TopProducts)

	admin := e.Group("/admin", authMW.RequireAdmin)
	admin.PATCH("/products/:id/approval", d.Catalog.SetApproval)
	admin.POST("/push", d.Notifications.Push)

	cart := e.Group("/cart", buyer)
	cart.GET("", d.Cart.Get)
	cart.DELETE("", d.Cart.Clear)
	cart.POST("/items", d.Cart.Add)
	cart.PATCH("/items/:line", d.Cart.SetQuantity)
	cart.DELETE("/items/:line", d.Cart.Remove)
	cart.POST("/items/:line/increment", d.Cart.Increment)
	cart.POST("/items/:line/decrement", d.Cart.Decrement)

	e.POST("/checkout", d.Cart.PlaceOrder, buyer)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.Orders.BuyerOrders)
	orders.GET("/:id", d.Orders.Get)
	orders.POST("/:id/status", d.Orders.Transition)
	orders.GET("/:id/receipt", d.Orders.Receipt)

	notes := e.Group("/notifications", authMW.RequireAuth)
	notes.GET("", d.Notifications.List)
	notes.GET("/unread-count", d.Notifications.UnreadCount)
	notes.POST("/read-all", d.Notifications.MarkAllRead)
	notes.POST("/:id/read", d.Notifications.MarkRead)
	notes.GET("/stream", d.Notifications.Stream)
}

