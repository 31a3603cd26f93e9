// internal/nodeid/types.go
package nodeid

// Address is the structured representation of a task name.
type Address struct {
	// Name is the identifier of the task block.
	Name string
	// Key is the for_each key of the instance.
	Key string
	// Keyed is true for an instance of a for_each task.
	Keyed bool
}

// Task returns the address of a task declared without for_each.
func Task(name string) Address {
	return Address{Name: name}
}

// Instance returns the address of one instance of a for_each task.
func Instance(name, key string) Address {
	return Address{Name: name, Key: key, Keyed: true}
}
