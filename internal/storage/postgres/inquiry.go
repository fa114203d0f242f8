package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/robobuild/internal/domain/inquiry"
)

const (
	createServiceRequestSQL = `INSERT INTO service_requests
		(id, device_id, device_name, issue_type, priority, preferred_date, contact_method, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	createContactMessageSQL = `INSERT INTO contact_messages
		(id, name, email, company, subject, inquiry_type, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

var _ inquiry.Repository = (*InquiryRepository)(nil)

// InquiryRepository stores service requests and contact messages in
// PostgreSQL.
type InquiryRepository struct {
	pool *pgxpool.Pool
}

// NewInquiryRepository returns an InquiryRepository that uses the given pool.
func NewInquiryRepository(pool *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{pool: pool}
}

// CreateServiceRequest persists a service request.
func (r *InquiryRepository) CreateServiceRequest(ctx context.Context, req *inquiry.ServiceRequest) error {
	preferred := pgtype.Date{Time: req.PreferredDate, Valid: !req.PreferredDate.IsZero()}
	_, err := r.pool.Exec(ctx, createServiceRequestSQL,
		req.ID, req.DeviceID, req.DeviceName, string(req.IssueType), string(req.Priority),
		preferred, string(req.ContactMethod), req.Description, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating service request %q: %w", req.ID, err)
	}
	return nil
}

// CreateContactMessage persists a contact message.
func (r *InquiryRepository) CreateContactMessage(ctx context.Context, m *inquiry.ContactMessage) error {
	_, err := r.pool.Exec(ctx, createContactMessageSQL,
		m.ID, m.Name, m.Email, m.Company, m.Subject, string(m.Topic), m.Message, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating contact message %q: %w", m.ID, err)
	}
	return nil
}
