// internal/nodeid/address.go
package nodeid

import "strconv"

// String serializes the Address into its canonical representation.
func (a Address) String() string {
	if !a.Keyed {
		return a.Name
	}
	return a.Name + "[" + strconv.Quote(a.Key) + "]"
}

// Block returns the address of the task block the Address belongs to.
func (a Address) Block() Address {
	return Task(a.Name)
}
