// Package seed decodes the JSON catalog, shop and fleet fixtures.
package seed

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
)

// Categories decodes an array of part categories.
func Categories(data []byte) ([]part.Category, error) {
	var out []part.Category
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var c part.Category
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				c.ID, err = d.Str()
			case "name":
				c.Name, err = d.Str()
			case "parts":
				err = d.Arr(func(d *jx.Decoder) error {
					p, err := decodePart(d)
					if err != nil {
						return err
					}
					p.CategoryID = c.ID
					c.Parts = append(c.Parts, p)
					return nil
				})
			default:
				err = d.Skip()
			}
			return errors.Wrapf(err, "field %q", key)
		}); err != nil {
			return errors.Wrapf(err, "category %d", len(out))
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	return out, nil
}

func decodePart(d *jx.Decoder) (part.Part, error) {
	var p part.Part
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "specs":
			p.Specs, err = d.Str()
		case "inStock":
			p.InStock, err = d.Bool()
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "part field %q", key)
	})
	return p, err
}

// Products decodes an array of shop products.
func Products(data []byte) ([]product.Product, error) {
	var out []product.Product
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var p product.Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Int()
			case "name":
				p.Name, err = d.Str()
			case "category":
				p.Category, err = d.Str()
			case "price":
				p.Price, err = decodeDecimal(d)
			case "originalPrice":
				if d.Next() == jx.Null {
					return d.Null()
				}
				var v decimal.Decimal
				v, err = decodeDecimal(d)
				p.OriginalPrice = decimal.NewNullDecimal(v)
			case "rating":
				p.Rating, err = d.Float64()
			case "reviews":
				p.Reviews, err = d.Int()
			case "badge":
				p.Badge, err = d.Str()
			case "description":
				p.Description, err = d.Str()
			case "inStock":
				p.InStock, err = d.Bool()
			case "image":
				p.Image, err = d.Str()
			case "features":
				p.Features, err = DecodeStrings(d)
			case "specs":
				p.Specs, err = DecodeSpecs(d)
			default:
				err = d.Skip()
			}
			return errors.Wrapf(err, "field %q", key)
		}); err != nil {
			return errors.Wrapf(err, "product %d", len(out))
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return out, nil
}

// Devices decodes an array of fleet devices.
func Devices(data []byte) ([]device.Device, error) {
	var out []device.Device
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var dev device.Device
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				dev.ID, err = d.Int()
			case "name":
				dev.Name, err = d.Str()
			case "type":
				dev.Type, err = d.Str()
			case "status":
				var s string
				s, err = d.Str()
				dev.Status = device.Status(s)
			case "battery":
				dev.Battery, err = d.Int()
			case "location":
				dev.Location, err = d.Str()
			case "lastSeen":
				dev.LastSeen, err = d.Str()
			case "isOnline":
				dev.Online, err = d.Bool()
			case "tasks":
				dev.Task, err = d.Str()
			default:
				err = d.Skip()
			}
			return errors.Wrapf(err, "field %q", key)
		}); err != nil {
			return errors.Wrapf(err, "device %d", len(out))
		}
		out = append(out, dev)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode devices")
	}
	return out, nil
}

// DecodeStrings decodes an array of strings.
func DecodeStrings(d *jx.Decoder) ([]string, error) {
	out := []string{}
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

// DecodeSpecs decodes an array of {"name","value"} objects.
func DecodeSpecs(d *jx.Decoder) ([]product.Spec, error) {
	out := []product.Spec{}
	err := d.Arr(func(d *jx.Decoder) error {
		var s product.Spec
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				s.Name, err = d.Str()
			case "value":
				s.Value, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

// EncodeStrings writes v as a JSON array.
func EncodeStrings(e *jx.Encoder, v []string) {
	e.ArrStart()
	for _, s := range v {
		e.Str(s)
	}
	e.ArrEnd()
}

// EncodeSpecs writes v as an array of {"name","value"} objects.
func EncodeSpecs(e *jx.Encoder, v []product.Spec) {
	e.ArrStart()
	for _, s := range v {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(s.Name)
		e.FieldStart("value")
		e.Str(s.Value)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}
