package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/pointperfect_bridge/internal/app"
)

func main() {
	port := flag.String("p", "/dev/ttyACM0", "receiver serial port")
	baud := flag.Uint("b", 38400, "baud rate")
	flag.Parse()

	log.Println("starting receiver fix monitor")

	if err := app.RunMonitor(*port, *baud); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
