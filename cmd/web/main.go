// @title           Estate API
// @version         1.0
// @description     REST API маркетплейса недвижимости: объекты, модерация, блог, заявки, уведомления.
// @host            localhost:8000
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "estate_backend/internal/app"

func main() {
	app.Run()
}
