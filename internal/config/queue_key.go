package config

type QueueKeyStruct struct {
	PersistAnswersQueue string
	PersistEventsQueue  string
}

var QueueKey = &QueueKeyStruct{
	PersistAnswersQueue: "persist_answers_queue",
	PersistEventsQueue:  "persist_events_queue",
}
