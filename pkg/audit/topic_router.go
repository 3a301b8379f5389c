package audit

import (
	"github.com/filesentry/filesentry/pkg/threat"
)

// TopicRouter determines which topics an event should be published to.
type TopicRouter struct {
	topics Topics
}

// NewTopicRouter creates a new topic router with the given topic
// configuration.
func NewTopicRouter(topics Topics) *TopicRouter {
	return &TopicRouter{
		topics: topics,
	}
}

// Route returns the list of topics this event should be published to.
//
// Routing rules:
//   - ALL events go to topics.SecurityEvents
//   - Response and escalation events also go to topics.Responses
//   - Critical severity events also go to topics.Critical
func (r *TopicRouter) Route(event SecurityEvent) []string {
	topics := []string{r.topics.SecurityEvents}

	switch event.Kind {
	case KindResponse, KindEscalation:
		topics = append(topics, r.topics.Responses)
	}

	if event.Severity == threat.SeverityCritical {
		topics = append(topics, r.topics.Critical)
	}

	return topics
}
