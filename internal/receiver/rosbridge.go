package receiver

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// rosTopics used when the receiver is reached through a rosbridge
// server instead of a serial port: NMEA sentences arrive on /nmea and
// corrections are published as rtcm_msgs to the ntrip client topic.
const (
	rosNMEATopic = "/nmea"
	rosNMEAType  = "nmea_msgs/Sentence"
	rosRTCMTopic = "/ntrip_client/rtcm"
	rosRTCMType  = "rtcm_msgs/Message"
)

type rosOp struct {
	Op    string          `json:"op"`
	Topic string          `json:"topic"`
	Type  string          `json:"type,omitempty"`
	Msg   json.RawMessage `json:"msg,omitempty"`
}

type rosSentence struct {
	Sentence string `json:"sentence"`
}

type rosRTCM struct {
	Message []int `json:"message"`
}

// rosbridgeLink adapts a rosbridge websocket to the Link contract.
type rosbridgeLink struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	pending []byte // unread remainder of the last sentence
}

// DialRosbridge connects to a rosbridge server (e.g.
// ws://localhost:9090), subscribes to the NMEA sentence topic and
// advertises the RTCM topic.
func DialRosbridge(url string) (Link, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial rosbridge %s: %w", url, err)
	}
	l := &rosbridgeLink{conn: conn}
	if err := l.send(rosOp{Op: "subscribe", Topic: rosNMEATopic, Type: rosNMEAType}); err != nil {
		conn.Close()
		return nil, err
	}
	if err := l.send(rosOp{Op: "advertise", Topic: rosRTCMTopic, Type: rosRTCMType}); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

func (l *rosbridgeLink) send(op rosOp) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.conn.WriteJSON(op)
}

// Read blocks until a sentence message arrives and returns it with a
// CR/LF terminator so the framer sees the same byte stream a serial
// port would deliver.
func (l *rosbridgeLink) Read(p []byte) (int, error) {
	for len(l.pending) == 0 {
		var op rosOp
		if err := l.conn.ReadJSON(&op); err != nil {
			return 0, err
		}
		if op.Op != "publish" || op.Topic != rosNMEATopic {
			continue
		}
		var msg rosSentence
		if err := json.Unmarshal(op.Msg, &msg); err != nil {
			continue
		}
		l.pending = []byte(msg.Sentence + "\r\n")
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// Write publishes one correction payload as an RTCM message.
func (l *rosbridgeLink) Write(p []byte) (int, error) {
	msg := rosRTCM{Message: make([]int, len(p))}
	for i, b := range p {
		msg.Message[i] = int(b)
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	if err := l.send(rosOp{Op: "publish", Topic: rosRTCMTopic, Msg: raw}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (l *rosbridgeLink) Close() error {
	return l.conn.Close()
}
