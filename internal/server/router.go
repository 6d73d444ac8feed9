package server

import (
	"net/http"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/cache"
	"voidspace/backend/internal/handler"
	"voidspace/backend/internal/repository"
	"voidspace/backend/internal/storage"
	"voidspace/backend/internal/upload"
	"voidspace/backend/pkg/hash"
	"voidspace/backend/pkg/token"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Options carries every injected collaborator the routes need. Stats may be
// nil (caching disabled).
type Options struct {
	DB     *gorm.DB
	Signer *token.Signer
	Hasher hash.Hasher
	Blobs  storage.BlobStore
	Stats  *cache.RedisCache
}

// NewRouter builds the gin engine with all routes wired. Shared between
// main and the handler tests.
func NewRouter(opts Options) *gin.Engine {
	users := repository.NewUserRepository(opts.DB)
	posts := repository.NewPostRepository(opts.DB)
	friends := repository.NewFriendRepository(opts.DB)
	messages := repository.NewMessageRepository(opts.DB)
	uploads := repository.NewUploadRepository(opts.DB)

	authHandler := handler.NewAuthHandler(users, opts.Signer, opts.Hasher)
	postHandler := handler.NewPostHandler(posts, opts.Stats)
	friendHandler := handler.NewFriendHandler(friends)
	messageHandler := handler.NewMessageHandler(messages, users)
	profileHandler := handler.NewProfileHandler(users, posts, friends, opts.Hasher, opts.Stats)
	uploadHandler := handler.NewUploadHandler(upload.NewGate(uploads, opts.Blobs), opts.Blobs)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")
	{
		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", auth.Middleware(opts.Signer), authHandler.Me)
		}

		// Feed is readable anonymously at the public tier.
		api.GET("/posts", auth.OptionalMiddleware(opts.Signer), postHandler.GetFeed)

		// Media readback is public; uploaded keys are unguessable.
		api.GET("/media/*key", uploadHandler.ServeMedia)

		// Everything else requires a session.
		protected := api.Group("")
		protected.Use(auth.Middleware(opts.Signer))
		{
			protected.POST("/posts", postHandler.CreatePost)
			protected.POST("/posts/:id/comments", postHandler.CreateComment)

			protected.GET("/friends", friendHandler.ListFriends)
			protected.POST("/friends", friendHandler.SendRequest)
			protected.GET("/friends/requests", friendHandler.ListRequests)
			protected.POST("/friends/requests", friendHandler.ResolveRequest)

			protected.GET("/messages", messageHandler.GetConversations)
			protected.GET("/messages/:friendId", messageHandler.GetHistory)
			protected.POST("/messages/:friendId", messageHandler.SendMessage)

			protected.GET("/profile", profileHandler.GetProfile)
			protected.PUT("/profile", profileHandler.UpdateProfile)

			protected.POST("/upload", uploadHandler.Upload)
			protected.GET("/upload", uploadHandler.GetUsage)
		}
	}

	return router
}
