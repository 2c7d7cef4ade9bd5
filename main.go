package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"fashionstore/internal/cache"
	"fashionstore/internal/config"
	"fashionstore/internal/database"
	"fashionstore/internal/handlers"
	"fashionstore/internal/middleware"
	"fashionstore/internal/notify"
	"fashionstore/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureBarcodeIndexes(db); err != nil {
		log.Printf("barcode index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureWishlistIndexes(db); err != nil {
		log.Printf("wishlist index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}

	store := cache.New(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword, config.AppEnv.RedisDB)
	if store != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.Printf("redis unavailable, caching disabled: %v", err)
			store = nil
		} else {
			log.Println("Redis connected to:", config.AppEnv.RedisAddr)
		}
		cancel()
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if config.AppEnv.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(
			config.AppEnv.SMTPHost,
			config.AppEnv.SMTPPort,
			config.AppEnv.SMTPUsername,
			config.AppEnv.SMTPPassword,
			config.AppEnv.MailFrom,
		)
	}

	gateway := payment.NewPaystackClient(config.AppEnv.PaystackSecretKey, config.AppEnv.PaystackBaseURL)

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db, notifier))
	r.POST("/auth/login", handlers.Login(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))
	r.POST("/auth/forgot-password", handlers.ForgotPassword(db, notifier))

	r.POST("/admin/login", handlers.AdminLogin(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))

	r.GET("/products", handlers.GetProducts(db, store))
	r.GET("/products/:id/reviews", handlers.GetProductReviews(db))
	r.GET("/categories", handlers.GetCategories(db))

	user := r.Group("/")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/user/profile", handlers.GetProfile(db))
		user.PUT("/user/profile", handlers.UpdateProfile(db))
		user.POST("/user/change-password", handlers.ChangePassword(db))

		user.GET("/cart", handlers.GetCart(db))
		user.POST("/cart", handlers.AddToCart(db))
		user.PUT("/cart/:id", handlers.UpdateCartItem(db))
		user.DELETE("/cart/:id", handlers.RemoveCartItem(db))

		user.POST("/orders", handlers.PlaceOrder(db, store))
		user.GET("/orders", handlers.GetOrderHistory(db))

		user.GET("/user/wishlist", handlers.GetWishlist(db))
		user.POST("/user/wishlist", handlers.AddToWishlist(db))
		user.DELETE("/user/wishlist/:id", handlers.RemoveFromWishlist(db))

		user.GET("/user/delivery", handlers.GetUserDeliveryCompanies(db))
		user.POST("/user/delivery", handlers.CreateDeliveryCompany(db))
		user.PUT("/user/delivery/:id", handlers.UpdateOwnDeliveryCompany(db))

		user.POST("/products/:id/reviews", handlers.CreateProductReview(db))

		user.POST("/payments/initialize", handlers.InitializePayment(db, gateway))
		user.POST("/payments/verify", handlers.VerifyPayment(gateway))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db, store))
		admin.PUT("/products/:id", handlers.UpdateProduct(db, store))
		admin.POST("/products/:id/quantity", handlers.UpdateProductQuantity(db, store))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db, store))

		admin.GET("/categories", handlers.GetCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/barcodes", handlers.GetBarcodes(db))
		admin.POST("/barcodes", handlers.RegisterBarcode(db))
		admin.POST("/barcodes/generate", handlers.GenerateBarcodes(db))

		admin.GET("/delivery", handlers.GetDeliveryCompanies(db))
		admin.POST("/delivery", handlers.CreateDeliveryCompany(db))
		admin.PUT("/delivery/:id", handlers.UpdateDeliveryCompany(db))
		admin.DELETE("/delivery/:id", handlers.DeleteDeliveryCompany(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db, notifier))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))

		admin.GET("/metrics", handlers.GetMetrics(db, store))
		admin.GET("/orders/statistics", handlers.GetOrderStatistics(db, store))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
