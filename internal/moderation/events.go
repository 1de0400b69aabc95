package moderation

// Publisher sends a JSON payload to a topic
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// TopicPublisher publishes every unwarn to a fixed topic
type TopicPublisher struct {
	Publisher Publisher
	Topic     string
}

// PublishUnwarn implements EventPublisher
func (p *TopicPublisher) PublishUnwarn(ev UnwarnEvent) error {
	return p.Publisher.Publish(p.Topic, ev)
}
