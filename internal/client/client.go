// Package client implements the PointPerfect subscription and session
// controller: it consumes receiver bytes, tracks fix quality and
// position, and drives the MQTT subscription set and broker endpoint
// accordingly.
package client

import (
	"io"
	"log"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/pointperfect_bridge/internal/geo"
	"github.com/relabs-tech/pointperfect_bridge/internal/gps"
	"github.com/relabs-tech/pointperfect_bridge/internal/nmea"
)

const earthCircumference = 6371000 * 2 * math.Pi // meters

var ggaPattern = regexp.MustCompile(`^\$G[A-Z]GGA,`)

// Transport is the pub/sub session the controller drives. Subscribe,
// Unsubscribe and Disconnect are fire-and-forget; Connect retries with
// a fixed backoff until a connection attempt succeeds. Completion is
// reported asynchronously through the controller's HandleConnect and
// HandleDisconnect methods, never from within the calling goroutine.
type Transport interface {
	Connect(server string, port int)
	Subscribe(topic string, qos byte)
	Unsubscribe(topic string)
	Disconnect()
}

// Config carries the controller settings.
type Config struct {
	Server    string
	Port      int
	Localized bool
	TileLevel int     // 0, 1 or 2
	Plan      string  // "ip" or "Lb"
	Region    string  // fixed region code; "" selects by proximity
	DistanceM float64 // movement threshold for reselection, meters
	MaxEpochs int     // max fixes between reselections, 0 = unlimited
	// ForceAssist keeps the AssistNow subscription active regardless
	// of fix quality.
	ForceAssist   bool
	StatsInterval int // print quality stats every N fixes, 0 = off
}

// Status is a point-in-time snapshot of the session for diagnostics.
type Status struct {
	Server          string   `json:"server"`
	Connected       bool     `json:"connected"`
	TileTopic       string   `json:"tile_topic,omitempty"`
	CorrectionTopic string   `json:"correction_topic,omitempty"`
	AssistTopic     string   `json:"assist_topic,omitempty"`
	LastFix         *gps.Fix `json:"last_fix,omitempty"`
	FixCount        int      `json:"fix_count"`
}

// Client is the session controller. All session state is guarded by
// mu: the receiver-ingest goroutine enters through HandleChunk and the
// transport callbacks through HandleConnect/HandleDisconnect/
// HandleMessage, so every state transition is serialized.
type Client struct {
	cfg    Config
	tr     Transport
	sink   io.Writer // receiver write side
	framer *nmea.Framer

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	doneOnce  sync.Once

	mu            sync.Mutex
	server        string
	pendingServer string // target of an endpoint migration, "" if none
	connected     bool
	closing       bool

	lat, lon      float64 // position at last node selection
	havePos       bool
	epochCount    int
	dlatThreshold float64
	dlonThreshold float64

	tileDict    *geo.TileDict
	tileTopic   string // current tile metadata subscription, "" if none
	spartnTopic string // current correction subscription, "" if none
	assist      assistPhase

	stats    *stats
	lastFix  gps.Fix
	haveFix  bool
	fixCount int
}

// New builds a controller writing correction payloads to sink. Call
// Start to initiate the connection.
func New(cfg Config, sink io.Writer, tr Transport) *Client {
	c := &Client{
		cfg:           cfg,
		tr:            tr,
		sink:          sink,
		server:        cfg.Server,
		dlatThreshold: cfg.DistanceM * 360 / earthCircumference,
		ready:         make(chan struct{}),
		done:          make(chan struct{}),
	}
	c.framer = nmea.NewFramer([]nmea.Handler{
		{Pattern: ggaPattern, Fn: c.handleGGA},
	})
	if cfg.ForceAssist {
		c.assist = assistInitial
	}
	if !cfg.Localized && cfg.Region != "" {
		c.spartnTopic = planPrefix(cfg.Plan) + cfg.Region
	}
	if cfg.StatsInterval > 0 {
		c.stats = &stats{interval: cfg.StatsInterval}
	}
	return c
}

// Start initiates the connection to the configured server. The
// transport keeps retrying until it succeeds; Ready is closed on the
// first successful connect.
func (c *Client) Start() {
	log.Printf("Connecting to %s", c.cfg.Server)
	c.tr.Connect(c.cfg.Server, c.cfg.Port)
}

// Ready is closed once the first connection has been established.
func (c *Client) Ready() <-chan struct{} { return c.ready }

// HandleChunk feeds a chunk of receiver bytes to the sentence framer.
// Called from the ingest goroutine.
func (c *Client) HandleChunk(data []byte) {
	c.framer.Feed(data)
}

// Close disconnects and waits for the disconnect to complete.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return
	}
	c.closing = true
	server := c.server
	c.mu.Unlock()

	log.Printf("Disconnecting from %s", server)
	c.tr.Disconnect()
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		log.Printf("timed out waiting for disconnect")
	}
}

// Status returns a snapshot of the session state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		Server:          c.server,
		Connected:       c.connected,
		TileTopic:       c.tileTopic,
		CorrectionTopic: c.spartnTopic,
		FixCount:        c.fixCount,
	}
	s.AssistTopic, _ = c.assist.subscription()
	if c.haveFix {
		fix := c.lastFix
		s.LastFix = &fix
	}
	return s
}

// HandleConnect is invoked by the transport after a connection
// attempt. A failed attempt is only reported; the transport keeps
// retrying with its fixed backoff.
func (c *Client) HandleConnect(err error) {
	if err != nil {
		log.Printf("failed to connect: %v", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	log.Printf("Connected to %s", c.server)
	if !c.cfg.Localized {
		c.subscribe(keyTopic(c.cfg.Plan), 1)
	}
	if c.spartnTopic != "" {
		c.subscribe(c.spartnTopic, 0)
	}
	if topic, qos := c.assist.subscription(); topic != "" {
		c.subscribe(topic, qos)
	}
	// in localized mode the tile subscription is reissued by position
	// processing once the next fix arrives
	c.readyOnce.Do(func() { close(c.ready) })
}

// HandleDisconnect is invoked by the transport when the connection is
// gone: with a nil error after a requested disconnect completes, with
// the cause when the connection was lost. A pending endpoint migration
// is completed here by connecting to the recorded target; without one,
// a lost connection is an anomaly and no reconnect is attempted.
func (c *Client) HandleDisconnect(err error) {
	c.mu.Lock()
	c.connected = false
	var target string
	if c.pendingServer != "" {
		c.server = c.pendingServer
		c.pendingServer = ""
		target = c.server
	}
	closing := c.closing
	port := c.cfg.Port
	c.mu.Unlock()

	if target != "" {
		log.Printf("Connecting to %s", target)
		c.tr.Connect(target, port)
	} else if closing {
		c.doneOnce.Do(func() { close(c.done) })
	}
	if err != nil {
		log.Printf("unexpected MQTT disconnect: %v", err)
	}
}

// HandleMessage routes one delivered message. Correction, key and
// AssistNow payloads are forwarded verbatim to the receiver; tile
// metadata replaces the stored dictionary and re-runs node selection.
func (c *Client) HandleMessage(topic string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case strings.HasPrefix(topic, planPrefix(c.cfg.Plan)):
		c.writeReceiver(payload)
	case strings.HasPrefix(topic, ubxTopicPrefix):
		c.writeReceiver(payload)
		if topic == assistInitialTopic && c.assist == assistInitial {
			// initial AssistNow blob received, switch to updates
			c.tr.Unsubscribe(assistInitialTopic)
			c.assist = assistUpdates
			c.subscribe(assistUpdatesTopic, 0)
		}
	case strings.HasPrefix(topic, tileTopicPrefix):
		if strings.HasSuffix(topic, dictTopicSuffix) {
			dict, err := geo.ParseTileDict(payload)
			if err != nil {
				log.Printf("tile %s: %v", topic, err)
				return
			}
			c.tileDict = dict
			c.selectNode()
		} else {
			c.writeReceiver(payload)
		}
	default:
		log.Printf("Unhandled topic %s", topic)
	}
}

func (c *Client) writeReceiver(payload []byte) {
	if _, err := c.sink.Write(payload); err != nil {
		log.Printf("receiver write error: %v", err)
	}
}

func (c *Client) subscribe(topic string, qos byte) {
	log.Printf("Subscribing to %s", topic)
	c.tr.Subscribe(topic, qos)
}

// handleGGA processes one checksum-valid GGA sentence from the framer.
func (c *Client) handleGGA(sentence string) {
	log.Print(sentence)
	fix := gps.DecodeGGA(sentence)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFix = fix
	c.haveFix = true
	c.fixCount++
	if c.stats != nil {
		if line := c.stats.add(fix.Quality); line != "" {
			log.Printf("STATS %s", line)
		}
	}

	if fix.Quality.NeedsAssistance() {
		if c.assist == assistNone {
			c.assist = assistInitial
			topic, qos := c.assist.subscription()
			c.subscribe(topic, qos)
		}
		return
	}
	if c.assist != assistNone && !c.cfg.ForceAssist {
		topic, _ := c.assist.subscription()
		log.Printf("Unsubscribing from %s", topic)
		c.tr.Unsubscribe(topic)
		c.assist = assistNone
	}
	c.processPosition(fix.Latitude, fix.Longitude)
}

// processPosition decides whether the position change warrants a new
// tile subscription or node selection. Caller holds mu.
func (c *Client) processPosition(lat, lon float64) {
	if !c.cfg.Localized {
		// region mode selects a topic once, from the static anchors
		if c.spartnTopic != "" {
			return
		}
		log.Printf("updating position: %f, %f", lat, lon)
		c.lat, c.lon = lat, lon
		c.havePos = true
		c.tileDict = geo.RegionDict(planPrefix(c.cfg.Plan), c.server)
		c.selectNode()
		return
	}

	c.epochCount++
	moved := math.Abs(lat-c.lat) > c.dlatThreshold ||
		math.Abs(lon-c.lon) > c.dlonThreshold
	expired := c.cfg.MaxEpochs > 0 && c.epochCount > c.cfg.MaxEpochs
	if c.havePos && !moved && !expired {
		return
	}
	log.Printf("updating position: %f, %f", lat, lon)
	c.lat, c.lon = lat, lon
	c.havePos = true
	c.epochCount = 0
	c.dlonThreshold = c.dlatThreshold * math.Cos(lat*math.Pi/180)

	newTile := geo.TileTopic(c.cfg.TileLevel, lat, lon)
	if newTile != c.tileTopic {
		if c.tileTopic != "" {
			c.tr.Unsubscribe(c.tileTopic)
		}
		log.Printf("Subscribing to tile %s", newTile)
		c.tr.Subscribe(newTile, 1)
		c.tileTopic = newTile
		// the incoming tile metadata will trigger node selection
	} else {
		c.selectNode()
	}
}

// selectNode picks the nearest node from the current tile dictionary
// and adjusts the correction subscription, migrating to a different
// broker endpoint if the dictionary demands one. Caller holds mu.
func (c *Client) selectNode() {
	if c.tileDict == nil {
		// no tile metadata yet
		return
	}
	node := geo.NearestNode(c.tileDict, c.lat, c.lon)
	if node == "" {
		log.Printf("no usable node in tile dictionary")
		return
	}
	if c.cfg.Localized {
		log.Printf("nearest node: %s", node)
	} else {
		node = geo.RegionFor(node)
		log.Printf("region %q automatically detected", node)
	}
	topic := c.tileDict.NodePrefix + node

	if c.server != c.tileDict.Endpoint {
		// the correct stream lives on another broker: remember the
		// target, drop the link, and let HandleDisconnect and the
		// following HandleConnect reissue the subscriptions
		c.pendingServer = c.tileDict.Endpoint
		c.spartnTopic = topic
		c.tr.Disconnect()
		return
	}
	if c.spartnTopic != "" {
		c.tr.Unsubscribe(c.spartnTopic)
	}
	c.spartnTopic = topic
	c.subscribe(topic, 0)
}
