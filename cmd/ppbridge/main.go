package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/pointperfect_bridge/internal/app"
	"github.com/relabs-tech/pointperfect_bridge/internal/config"
)

func main() {
	configPath := flag.String("c", "ppbridge.conf", "path to configuration file")
	flag.Parse()

	log.Println("starting pointperfect bridge")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := app.RunBridge(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
