// Command local-server serves every function on one port for local
// development. Set FUNCTION_TARGET to serve a single function.
package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/joho/godotenv"

	_ "github.com/fitai/fitai-server/functions/chat"
	_ "github.com/fitai/fitai-server/functions/exporter"
	_ "github.com/fitai/fitai-server/functions/nutrition"
	_ "github.com/fitai/fitai-server/functions/profile"
	_ "github.com/fitai/fitai-server/functions/progress"
	_ "github.com/fitai/fitai-server/functions/workout"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v\n", err)
	}
}
