package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleCourier  = "courier"
)

// Courier application statuses
const (
	CourierApplicationPending  = "pending"
	CourierApplicationApproved = "approved"
	CourierApplicationRejected = "rejected"
)

// Address represents a user's shipping address
type Address struct {
	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
	State   string `bson:"state" json:"state"`
	Zipcode string `bson:"zipcode" json:"zipcode"`
}

// CourierApplication holds the details a customer submits to become a courier.
// The fields are only meaningful once an admin approves the application and
// the user's role flips to courier.
type CourierApplication struct {
	Status        string     `bson:"status" json:"status"`
	AppliedAt     time.Time  `bson:"applied_at" json:"applied_at"`
	ReviewedAt    *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	VehicleType   string     `bson:"vehicle_type" json:"vehicle_type"`
	ServiceArea   string     `bson:"service_area" json:"service_area"`
	IDDocumentURL string     `bson:"id_document_url" json:"id_document_url"`
}

// User represents an account in the system
type User struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	AuthUID            string              `bson:"auth_uid,omitempty" json:"auth_uid,omitempty"`
	Username           string              `bson:"username" json:"username" validate:"required"`
	Email              string              `bson:"email" json:"email" validate:"required,email"`
	Password           string              `bson:"password,omitempty" json:"-"`
	Role               string              `bson:"role" json:"role"`
	Avatar             string              `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Address            Address             `bson:"address" json:"address"`
	Phone              string              `bson:"phone,omitempty" json:"phone,omitempty"`
	PushToken          string              `bson:"push_token,omitempty" json:"-"`
	CourierApplication *CourierApplication `bson:"courier_application,omitempty" json:"courier_application,omitempty"`
	CreatedAt          time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updated_at"`
}

// Validate checks the user's struct tags.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// Sanitize clears fields that must never leave the server.
func (u *User) Sanitize() {
	u.Password = ""
}
