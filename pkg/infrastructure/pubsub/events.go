package pubsub

import (
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// NewCloudEvent creates a CloudEvent v1.0 with a random ID and JSON data.
func NewCloudEvent(source, eventType string, data interface{}) (cloudevents.Event, error) {
	e := cloudevents.NewEvent()
	e.SetSpecVersion(cloudevents.VersionV1)
	e.SetID(uuid.NewString())
	e.SetType(eventType)
	e.SetSource(source)
	e.SetTime(time.Now().UTC())

	if err := e.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return e, fmt.Errorf("set event data: %w", err)
	}
	if err := e.Validate(); err != nil {
		return e, fmt.Errorf("invalid event: %w", err)
	}
	return e, nil
}

// Attributes are the Pub/Sub message attributes derived from an event, so
// subscriptions can filter on type without decoding the body.
func Attributes(e cloudevents.Event) map[string]string {
	return map[string]string{
		"ce-id":     e.ID(),
		"ce-type":   e.Type(),
		"ce-source": e.Source(),
	}
}
