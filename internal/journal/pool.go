package journal

import "sync"

// eventPool reduces GC pressure from the one Event allocation per
// decoded record, the same way the teacher's RDBEntry pool
// (internal/replica/entry_pool.go) avoided an allocation per key/value
// pair. dispatch takes one pooled Event per decoded record and
// Decoder.Next returns that pointer; Decode hands the sink a copy by
// value and then releases the pooled Event with putEvent. Events that
// Next returns to other callers are not released to the pool.
var eventPool = sync.Pool{
	New: func() interface{} { return new(Event) },
}

func getEvent() *Event {
	return eventPool.Get().(*Event)
}

func putEvent(e *Event) {
	*e = Event{}
	eventPool.Put(e)
}
