package transport

// Queue names a destination. Queues are comparable values: two queues are
// equal iff their names are equal.
type Queue struct {
	name string
}

func NewQueue(name string) Queue {
	return Queue{name: name}
}

func (q Queue) Name() string {
	return q.name
}

func (q Queue) String() string {
	return q.name
}
