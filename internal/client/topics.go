package client

// PointPerfect topic layout. The leading slash on the key, AssistNow
// and regional topics is part of the service contract; localized tile
// topics carry no leading slash.
const (
	assistInitialTopic = "/pp/ubx/mga"
	assistUpdatesTopic = "/pp/ubx/mga/updates"
	ubxTopicPrefix     = "/pp/ubx/"
	tileTopicPrefix    = "pp/ip"
	dictTopicSuffix    = "/dict"
)

// keyTopic is the fixed SPARTN key-delivery topic for a plan ("ip" or
// "Lb").
func keyTopic(plan string) string {
	return "/pp/ubx/0236/" + plan
}

// planPrefix is the topic prefix of regional correction streams.
func planPrefix(plan string) string {
	return "/pp/" + plan + "/"
}

// assistPhase is the lifecycle of the AssistNow subscription. It only
// ever advances absent -> initial -> updates and then returns to
// absent; it never re-enters initial without passing through absent.
type assistPhase int

const (
	assistNone assistPhase = iota
	assistInitial
	assistUpdates
)

// subscription returns the topic and QoS for the phase. The initial
// bulk download uses QoS 1, the incremental updates QoS 0.
func (p assistPhase) subscription() (topic string, qos byte) {
	switch p {
	case assistInitial:
		return assistInitialTopic, 1
	case assistUpdates:
		return assistUpdatesTopic, 0
	}
	return "", 0
}
