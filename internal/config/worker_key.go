package config

type WorkerKeyStruct struct {
	FeedEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	FeedEventsQueue: "feed_events_queue",
}
