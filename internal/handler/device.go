package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/robobuild/internal/domain/device"
)

func (h *Handler) listDevices(w http.ResponseWriter, _ *http.Request) error {
	devices, stats := h.fleet.List(), h.fleet.Stats()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("stats")
		encodeStats(e, stats)
		e.FieldStart("devices")
		e.ArrStart()
		for _, d := range devices {
			encodeDevice(e, d)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) controlDevice(w http.ResponseWriter, r *http.Request) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}

	var raw string
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "action" {
			return d.Skip()
		}
		var err error
		raw, err = d.Str()
		return err
	}); err != nil {
		return err
	}
	action, err := device.ParseAction(raw)
	if err != nil {
		return err
	}

	d, err := h.fleet.Control(r.Context(), id, action)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeDevice(e, d) })
	return nil
}
