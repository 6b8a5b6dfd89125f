package types

// PubSubMessage is the payload of a Pub/Sub event via Cloud Event.
type PubSubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

// WorkoutCompletedEvent is published when a user marks a day complete.
type WorkoutCompletedEvent struct {
	UserID         string `json:"user_id"`
	Date           string `json:"date"`
	Weekday        string `json:"weekday"`
	CaloriesBurned int    `json:"calories_burned"`
}
