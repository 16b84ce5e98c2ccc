// Package memory implements the store interfaces with in-process maps.
// It backs tests and lets every store be constructed without a database.
package memory

// DB bundles the in-memory stores behind one handle, mirroring the
// mongodb package's Open lifecycle.
type DB struct {
	Books         *BookStore
	Users         *UserStore
	Orders        *OrderStore
	Carts         *CartStore
	Reviews       *ReviewStore
	Notifications *NotificationStore
}

// Open creates a fresh, empty DB.
func Open() *DB {
	return &DB{
		Books:         &BookStore{},
		Users:         &UserStore{},
		Orders:        &OrderStore{},
		Carts:         &CartStore{},
		Reviews:       &ReviewStore{},
		Notifications: &NotificationStore{},
	}
}
