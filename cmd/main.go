// cmd/main.go
package main

import (
	"nutritrack-api/app"

	_ "nutritrack-api/docs"
)

// @title           NutriTrack API
// @version         1.0
// @description     Nutrition tracking API: meal analysis, recipe catalogue and weekly planning.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
