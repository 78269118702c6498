package routes

import (
	"io"
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"temple_pass/internal/controllers"
	"temple_pass/internal/middleware"
	"temple_pass/internal/models"
	"temple_pass/internal/realtime"
)

// SetupRouter builds the engine with every API group. Request logs go to
// logOut.
func SetupRouter(ctl *controllers.Controller, hub *realtime.Hub, logOut io.Writer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(logOut),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/api/health"}),
	))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
	})

	UserRoutes(api, ctl)
	RouteRoutes(api, ctl)
	TimeSlotRoutes(api, ctl)
	PassRoutes(api, ctl)
	TrafficRoutes(api, ctl)
	WebSocketRoutes(r, hub)

	return r
}

func UserRoutes(api *gin.RouterGroup, ctl *controllers.Controller) {
	users := api.Group("/users")
	{
		users.POST("/signup", ctl.SignupUser)
		users.POST("/login", ctl.LoginUser)
	}
}

func RouteRoutes(api *gin.RouterGroup, ctl *controllers.Controller) {
	admin := middleware.RequireRole(models.RoleAdmin)
	routes := api.Group("/routes")
	{
		routes.GET("", ctl.ListRoutes)
		routes.GET("/:id", ctl.GetRoute)
		routes.POST("", admin, ctl.CreateRoute)
		routes.PATCH("/:id/traffic", admin, ctl.UpdateRouteTraffic)
		routes.PATCH("/:id/status", admin, ctl.UpdateRouteStatus)
	}
}

func TimeSlotRoutes(api *gin.RouterGroup, ctl *controllers.Controller) {
	admin := middleware.RequireRole(models.RoleAdmin)
	slots := api.Group("/timeslots")
	{
		slots.GET("", ctl.ListTimeSlots)
		slots.GET("/:id", ctl.GetTimeSlot)
		slots.POST("/generate", admin, ctl.GenerateTimeSlots)
		slots.PATCH("/:id/status", admin, ctl.UpdateTimeSlotStatus)
	}
}

func PassRoutes(api *gin.RouterGroup, ctl *controllers.Controller) {
	passes := api.Group("/passes")
	passes.Use(middleware.RequireAuth())
	{
		passes.POST("/generate", ctl.GeneratePass)
		passes.GET("/user/:userId", ctl.ListUserPasses)
		passes.GET("/:passId", ctl.GetPass)
		passes.PATCH("/:passId/status", ctl.UpdatePassStatus)
	}
}

func TrafficRoutes(api *gin.RouterGroup, ctl *controllers.Controller) {
	admin := middleware.RequireRole(models.RoleAdmin)
	t := api.Group("/traffic")
	{
		t.GET("/route/:routeId", ctl.GetRouteTraffic)
		t.POST("/optimal-slot", ctl.GetOptimalSlot)
		t.GET("/overview", ctl.GetTrafficOverview)
		t.GET("/balance/:routeId", admin, ctl.BalanceLoad)
		t.POST("/simulate", admin, ctl.SimulateTraffic)
	}
}

func WebSocketRoutes(r *gin.Engine, hub *realtime.Hub) {
	ws := r.Group("/ws")
	{
		ws.GET("/traffic", gin.WrapF(hub.ServeWS))
	}
}
