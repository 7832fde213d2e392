package internal

import (
	"net/http"

	"folivix/internal/controllers"
	"folivix/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/users", http.HandlerFunc(apiController.GetUsers))
	routers.Post("/users", http.HandlerFunc(apiController.CreateUser))
	routers.Delete("/users", http.HandlerFunc(apiController.DeleteUser))
	routers.Post("/users/rename", http.HandlerFunc(apiController.RenameUser))
	routers.Post("/users/image", http.HandlerFunc(apiController.UpdateUserImage))
	routers.Get("/users/current", http.HandlerFunc(apiController.GetCurrentUser))
	routers.Post("/users/current", http.HandlerFunc(apiController.SetCurrentUser))

	routers.Post("/analyze", http.HandlerFunc(apiController.Analyze))
	routers.Get("/results", http.HandlerFunc(apiController.GetResults))
	routers.Post("/results", http.HandlerFunc(apiController.SaveResult))
	routers.Delete("/results", http.HandlerFunc(apiController.DeleteResult))
	routers.Get("/statistics", http.HandlerFunc(apiController.GetStatistics))
	routers.Get("/export", http.HandlerFunc(apiController.ExportHistory))

	routers.Get("/diseases", http.HandlerFunc(apiController.GetDiseases))
	routers.Get("/tip", http.HandlerFunc(apiController.GetTip))
	routers.Get("/settings/server", http.HandlerFunc(apiController.GetServerHost))
	routers.Post("/settings/server", http.HandlerFunc(apiController.SetServerHost))

	return routers
}
