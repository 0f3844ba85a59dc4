package main

import (
	"context"
	"os"

	"github.com/Am01102007/Proyecto-GoHost-sub000/routes"
	"github.com/Am01102007/Proyecto-GoHost-sub000/services"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"github.com/Am01102007/Proyecto-GoHost-sub000/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()

	// Initialize services
	storage.InitializeDB()
	storage.InitializeCloudinary()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/me", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
		user.Patch("/profile", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateUserProfile)
	}

	accommodation := app.Party("/api/accommodation")
	{
		accommodation.Post("/", accessTokenVerifierMiddleware, routes.CreateAccommodation)
		accommodation.Get("/search", routes.SearchAccommodations)
		accommodation.Get("/{id}", routes.GetAccommodation)
		accommodation.Get("/userid/{id}", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetAccommodationsByUserID)
		accommodation.Patch("/{id}", accessTokenVerifierMiddleware, routes.UpdateAccommodation)
		accommodation.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteAccommodation)
	}

	reservation := app.Party("/api/reservation")
	{
		reservation.Get("/accommodation/{id}", routes.GetReservationsByAccommodationID)
		reservation.Post("/accommodation/{id}", accessTokenVerifierMiddleware, routes.CreateReservation)
		reservation.Get("/user/{id}", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserReservations)
		reservation.Get("/host", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetHostReservations)
		reservation.Patch("/{id}", accessTokenVerifierMiddleware, routes.UpdateReservation)
		reservation.Delete("/{id}", accessTokenVerifierMiddleware, routes.CancelReservation)
	}

	comment := app.Party("/api/comment")
	{
		comment.Get("/accommodation/{id}", routes.ListAccommodationComments)
		comment.Post("/accommodation/{id}", accessTokenVerifierMiddleware, routes.CreateComment)
		comment.Post("/{id}/reply", accessTokenVerifierMiddleware, routes.ReplyToComment)
		comment.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteComment)
	}

	conversation := app.Party("/api/conversation")
	{
		conversation.Post("/", accessTokenVerifierMiddleware, routes.CreateConversation)
		conversation.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUserConversations)
		conversation.Get("/{id}/messages", accessTokenVerifierMiddleware, routes.GetConversationMessages)
		conversation.Post("/{id}/messages", accessTokenVerifierMiddleware, routes.SendMessage)
	}

	// Reminder dispatcher runs alongside the HTTP server until shutdown
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go services.NewReminderDispatcher(services.NewHTTPMailSender()).Run(dispatcherCtx)

	iris.RegisterOnInterrupt(stopDispatcher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	app.Listen(":" + port)
}
