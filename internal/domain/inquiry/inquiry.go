// Package inquiry handles customer service requests for owned devices and
// general contact messages.
package inquiry

import (
	"context"
	"fmt"
	"time"
)

// IssueType is the kind of service a device needs.
type IssueType string

const (
	IssueRepair      IssueType = "repair"
	IssueMaintenance IssueType = "maintenance"
	IssueUpgrade     IssueType = "upgrade"
	IssueCalibration IssueType = "calibration"
)

// Priority tells support how soon to respond.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ContactMethod is how the customer wants to hear back.
type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactSMS   ContactMethod = "sms"
	ContactApp   ContactMethod = "app"
)

// Topic routes a contact message to the right team.
type Topic string

const (
	TopicSales       Topic = "sales"
	TopicSupport     Topic = "support"
	TopicCustom      Topic = "custom"
	TopicPartnership Topic = "partnership"
	TopicMedia       Topic = "media"
	TopicOther       Topic = "other"
)

// FieldError reports an invalid or missing form field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ServiceRequest asks for service on a device in the customer's fleet.
type ServiceRequest struct {
	ID            string
	DeviceID      int
	DeviceName    string
	IssueType     IssueType
	Priority      Priority
	PreferredDate time.Time // zero when the customer has no preference
	ContactMethod ContactMethod
	Description   string
	CreatedAt     time.Time
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Subject   string
	Topic     Topic
	Message   string
	CreatedAt time.Time
}

// Repository persists submitted forms.
type Repository interface {
	CreateServiceRequest(ctx context.Context, r *ServiceRequest) error
	CreateContactMessage(ctx context.Context, m *ContactMessage) error
}
