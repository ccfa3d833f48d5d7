// Command travelboard serves the follow graph and the countries-visited
// leaderboard over HTTP and gRPC.
package main

import (
	"fmt"
	"log"

	"github.com/patric-chuzhbe/travelboard/internal/app"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func main() {
	fmt.Printf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", buildVersion, buildDate, buildCommit)

	application, err := app.New()
	if err != nil {
		log.Fatalf("travelboard: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Printf("travelboard: %v", err)
	}
}
