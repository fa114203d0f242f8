package inquiry

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/robobuild/internal/domain/device"
)

const maxTextLen = 5000

// Devices resolves device ids against the customer's fleet.
type Devices interface {
	Get(id int) (device.Device, error)
}

// ServiceRequestInput holds the raw service form.
type ServiceRequestInput struct {
	DeviceID      int
	IssueType     string
	Priority      string
	PreferredDate string // YYYY-MM-DD, optional
	ContactMethod string
	Description   string
}

// ContactInput holds the raw contact form.
type ContactInput struct {
	Name    string
	Email   string
	Company string
	Subject string
	Topic   string
	Message string
}

// Service validates and stores submitted forms.
type Service struct {
	repo    Repository
	devices Devices
	now     func() time.Time
}

// NewService creates a Service.
func NewService(repo Repository, devices Devices) *Service {
	return &Service{repo: repo, devices: devices, now: time.Now}
}

// SubmitServiceRequest validates in against the fleet and stores it.
// Priority defaults to medium and the contact method to email.
func (s *Service) SubmitServiceRequest(ctx context.Context, in ServiceRequestInput) (*ServiceRequest, error) {
	dev, err := s.devices.Get(in.DeviceID)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			return nil, &FieldError{Field: "deviceId", Msg: "unknown device"}
		}
		return nil, errors.Wrap(err, "get device")
	}

	issue, err := oneOf("issueType", in.IssueType, "",
		IssueRepair, IssueMaintenance, IssueUpgrade, IssueCalibration)
	if err != nil {
		return nil, err
	}
	priority, err := oneOf("priority", in.Priority, PriorityMedium,
		PriorityLow, PriorityMedium, PriorityHigh)
	if err != nil {
		return nil, err
	}
	method, err := oneOf("contactMethod", in.ContactMethod, ContactEmail,
		ContactEmail, ContactPhone, ContactSMS, ContactApp)
	if err != nil {
		return nil, err
	}
	description, err := text("description", in.Description, true)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var preferred time.Time
	if raw := strings.TrimSpace(in.PreferredDate); raw != "" {
		preferred, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, &FieldError{Field: "preferredDate", Msg: "must be a YYYY-MM-DD date"}
		}
		if preferred.Before(now.Truncate(24 * time.Hour)) {
			return nil, &FieldError{Field: "preferredDate", Msg: "must not be in the past"}
		}
	}

	r := &ServiceRequest{
		ID:            uuid.New().String(),
		DeviceID:      dev.ID,
		DeviceName:    dev.Name,
		IssueType:     issue,
		Priority:      priority,
		PreferredDate: preferred,
		ContactMethod: method,
		Description:   description,
		CreatedAt:     now,
	}
	if err := s.repo.CreateServiceRequest(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create service request")
	}
	return r, nil
}

// SubmitContact validates and stores a contact message. The topic defaults to
// other.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (*ContactMessage, error) {
	name, err := text("name", in.Name, true)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, &FieldError{Field: "email", Msg: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &FieldError{Field: "email", Msg: "is not a valid address"}
	}
	topic, err := oneOf("inquiryType", in.Topic, TopicOther,
		TopicSales, TopicSupport, TopicCustom, TopicPartnership, TopicMedia, TopicOther)
	if err != nil {
		return nil, err
	}
	company, err := text("company", in.Company, false)
	if err != nil {
		return nil, err
	}
	subject, err := text("subject", in.Subject, false)
	if err != nil {
		return nil, err
	}
	message, err := text("message", in.Message, true)
	if err != nil {
		return nil, err
	}

	m := &ContactMessage{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Company:   company,
		Subject:   subject,
		Topic:     topic,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateContactMessage(ctx, m); err != nil {
		return nil, errors.Wrap(err, "create contact message")
	}
	return m, nil
}

// oneOf parses raw as one of allowed. An empty raw yields def, or a
// "required" error when def is empty.
func oneOf[T ~string](field, raw string, def T, allowed ...T) (T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if def == "" {
			return "", &FieldError{Field: field, Msg: "is required"}
		}
		return def, nil
	}
	for _, v := range allowed {
		if T(raw) == v {
			return v, nil
		}
	}
	return "", &FieldError{Field: field, Msg: fmt.Sprintf("unsupported value %q", raw)}
}

func text(field, raw string, required bool) (string, error) {
	v := strings.TrimSpace(raw)
	switch {
	case required && v == "":
		return "", &FieldError{Field: field, Msg: "is required"}
	case len(v) > maxTextLen:
		return "", &FieldError{Field: field, Msg: "is too long"}
	}
	return v, nil
}
