package routes

import (
	"time"

	"musicschool_backend/app"
	"musicschool_backend/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	instCtl := controllers.NewInstrumentController(s)
	userCtl := controllers.NewUserController(s)

	authMW := app.AuthRequired(s.AppSess, s.Repo)
	staffMW := app.StaffOnly()
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// Identity
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
		auth.POST("/logout", authCtl.Logout)
		auth.GET("/whoami", authMW, authCtl.Whoami)
	}

	// ------------------------------
	// Instrument lending
	// ------------------------------
	insts := r.Group("/api/instruments", authMW, seenMW)
	{
		insts.GET("", instCtl.List) // ?q=&status=&loanType=
		insts.GET("/summary", instCtl.Summary)
		insts.GET("/:id", instCtl.Get)
		insts.GET("/:id/history", instCtl.History)

		// Students check out for themselves; the controller enforces it.
		insts.POST("/:id/borrow", instCtl.Borrow)
		insts.POST("/:id/loan", instCtl.Loan)
	}

	instsStaff := r.Group("/api/instruments", authMW, staffMW, seenMW)
	{
		instsStaff.POST("", instCtl.Register)
		instsStaff.POST("/:id/return", instCtl.Return)
		instsStaff.POST("/:id/renew", instCtl.Renew)
		instsStaff.POST("/:id/maintenance", instCtl.StartMaintenance)
		instsStaff.DELETE("/:id/maintenance", instCtl.EndMaintenance)
	}

	// ------------------------------
	// Ledger (staff)
	// ------------------------------
	loans := r.Group("/api/loans", authMW, staffMW)
	{
		loans.GET("/events", instCtl.ListEvents) // ?instrumentId=&studentId=&action=
	}

	// ------------------------------
	// User administration (admin)
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers) // ?q=&page=&size=
		users.GET("/:id", userCtl.GetUser)
		users.DELETE("/:id", userCtl.DeleteUser)
	}
}
