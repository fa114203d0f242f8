package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/robobuild/internal/domain/inquiry"
)

func (h *Handler) submitServiceRequest(w http.ResponseWriter, r *http.Request) error {
	var (
		in       inquiry.ServiceRequestInput
		hasDevID bool
	)
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "deviceId":
			in.DeviceID, err = decodeInt(d)
			hasDevID = err == nil
		case "issueType":
			in.IssueType, err = d.Str()
		case "priority":
			in.Priority, err = d.Str()
		case "preferredDate":
			in.PreferredDate, err = d.Str()
		case "contactMethod":
			in.ContactMethod, err = d.Str()
		case "description":
			in.Description, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}
	if !hasDevID {
		return badRequest("deviceId is required")
	}

	sr, err := h.inquiries.SubmitServiceRequest(r.Context(), in)
	if err != nil {
		return err
	}
	h.metrics.inquiry(r.Context(), "service")

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(sr.ID)
		e.FieldStart("deviceId")
		e.Int(sr.DeviceID)
		e.FieldStart("deviceName")
		e.Str(sr.DeviceName)
		e.FieldStart("issueType")
		e.Str(string(sr.IssueType))
		e.FieldStart("priority")
		e.Str(string(sr.Priority))
		if !sr.PreferredDate.IsZero() {
			e.FieldStart("preferredDate")
			e.Str(sr.PreferredDate.Format(time.DateOnly))
		}
		e.FieldStart("contactMethod")
		e.Str(string(sr.ContactMethod))
		e.FieldStart("description")
		e.Str(sr.Description)
		e.FieldStart("createdAt")
		e.Str(sr.CreatedAt.Format(time.RFC3339))
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) error {
	var in inquiry.ContactInput
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = d.Str()
		case "email":
			in.Email, err = d.Str()
		case "company":
			in.Company, err = d.Str()
		case "subject":
			in.Subject, err = d.Str()
		case "inquiryType":
			in.Topic, err = d.Str()
		case "message":
			in.Message, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}

	m, err := h.inquiries.SubmitContact(r.Context(), in)
	if err != nil {
		return err
	}
	h.metrics.inquiry(r.Context(), "contact")

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(m.ID)
		e.FieldStart("inquiryType")
		e.Str(string(m.Topic))
		e.FieldStart("createdAt")
		e.Str(m.CreatedAt.Format(time.RFC3339))
		e.ObjEnd()
	})
	return nil
}
