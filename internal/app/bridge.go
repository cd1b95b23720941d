package app

import (
	"crypto/tls"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/pointperfect_bridge/internal/client"
	"github.com/relabs-tech/pointperfect_bridge/internal/config"
	"github.com/relabs-tech/pointperfect_bridge/internal/credentials"
	"github.com/relabs-tech/pointperfect_bridge/internal/receiver"
	"github.com/relabs-tech/pointperfect_bridge/internal/transport"
)

// RunBridge wires the receiver link, the MQTT transport and the
// session controller together and runs the ingest loop until
// interrupted or the receiver link ends.
func RunBridge() error {
	cfg := config.Get()

	// ---- credentials ----
	server := cfg.MQTTServer
	port := cfg.MQTTPort
	clientID := cfg.ClientID
	lband := cfg.LBand
	var tlsCfg *tls.Config
	if cfg.UCenterJSON != "" {
		creds, err := credentials.LoadUCenterJSON(cfg.UCenterJSON)
		if err != nil {
			return err
		}
		server = creds.Server
		port = creds.Port
		clientID = creds.ClientID
		lband = creds.LBand
		tlsCfg = creds.TLS
	} else {
		var err error
		tlsCfg, err = credentials.LoadKeyPair(cfg.CredentialsDir, cfg.ClientID)
		if err != nil {
			return err
		}
	}

	// ---- receiver link ----
	var link receiver.Link
	var err error
	if cfg.SerialPort != "" {
		link, err = receiver.OpenSerial(cfg.SerialPort, uint(cfg.BaudRate))
		if err != nil {
			return err
		}
		log.Printf("receiver serial port opened on %s at %d baud", cfg.SerialPort, cfg.BaudRate)
	} else {
		link, err = receiver.DialRosbridge(cfg.RosbridgeURL)
		if err != nil {
			return err
		}
		log.Printf("receiver connected via rosbridge at %s", cfg.RosbridgeURL)
	}
	if cfg.UBXCapture != "" {
		wrapped, err := receiver.WithCapture(link, cfg.UBXCapture)
		if err != nil {
			link.Close()
			return err
		}
		link = wrapped
		log.Printf("writing all receiver data to %s", cfg.UBXCapture)
	}
	defer link.Close()

	// ---- controller ----
	plan := "ip"
	if lband {
		plan = "Lb"
	}
	tr := transport.NewMQTT(clientID, tlsCfg)
	pc := client.New(client.Config{
		Server:        server,
		Port:          port,
		Localized:     cfg.Localized,
		TileLevel:     cfg.TileLevel,
		Plan:          plan,
		Region:        cfg.Region,
		DistanceM:     float64(cfg.DistanceM),
		MaxEpochs:     cfg.MaxEpochs,
		ForceAssist:   cfg.AssistNow,
		StatsInterval: cfg.StatsInterval,
	}, link, tr)
	tr.SetSink(pc)
	defer tr.Stop()
	pc.Start()

	if cfg.StatusPort > 0 {
		go runStatus(cfg.StatusPort, pc)
	}

	// closing the link unblocks the ingest read below
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down")
		close(stop)
		link.Close()
	}()

	// do not push receiver data before the session is up
	select {
	case <-pc.Ready():
	case <-stop:
		return nil
	}

	buf := make([]byte, 512)
	for {
		n, err := link.Read(buf)
		if n > 0 {
			pc.HandleChunk(buf[:n])
		}
		if err != nil {
			select {
			case <-stop:
			default:
				log.Printf("receiver read error: %v", err)
			}
			break
		}
	}

	pc.Close()
	return nil
}
