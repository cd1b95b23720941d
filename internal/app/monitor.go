package app

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/pointperfect_bridge/internal/receiver"
)

// RunMonitor reads the receiver's serial port and prints decoded GGA
// and RMC sentences to the console. Useful for checking wiring and
// fix quality before pointing the bridge at the service.
func RunMonitor(port string, baud uint) error {
	link, err := receiver.OpenSerial(port, baud)
	if err != nil {
		return err
	}
	defer link.Close()
	log.Printf("monitor: serial port opened on %s at %d baud", port, baud)

	reader := bufio.NewReader(link)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// UBX/RTCM fragments or partial sentences; skip
			continue
		}

		switch sentence.DataType() {
		case nmea.TypeGGA:
			m := sentence.(nmea.GGA)
			fmt.Printf(
				"[GGA]  time=%s quality=%s sats=%d lat=%.6f lon=%.6f alt=%.1f\n",
				m.Time, m.FixQuality, m.NumSatellites, m.Latitude, m.Longitude, m.Altitude,
			)
		case nmea.TypeRMC:
			m := sentence.(nmea.RMC)
			fmt.Printf(
				"[RMC]  time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° validity=%s\n",
				m.Time, m.Date, m.Latitude, m.Longitude, m.Speed, m.Course, m.Validity,
			)
		default:
			// ignore other sentence types
		}
	}
}
