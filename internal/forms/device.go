package forms

import (
	"math"
	"net/url"
)

type deviceInput struct {
	Name  string `form:"name" validate:"required,max=64"`
	ID    string `form:"id" validate:"required,number"`
	Owner string `form:"owner" validate:"omitempty,number"`
}

type Device struct {
	Name string
	ID   uint
	// Owner is the registering user's number, nil when left blank.
	Owner *int
}

// ParseDevice reads the add-device form. Whether the id is already taken is
// left to the catalog.
func ParseDevice(values url.Values) (Device, error) {
	input := deviceInput{
		Name:  value(values, "name"),
		ID:    value(values, "id"),
		Owner: value(values, "owner"),
	}

	errs := check(input)
	if errs == nil {
		errs = FieldErrors{}
	}

	device := Device{Name: input.Name}

	if _, bad := errs["id"]; !bad {
		id := atoi(errs, "id", input.ID)
		switch {
		case errs["id"] != "":
		case id <= 0:
			errs["id"] = MSG_POSITIVE
		case id > math.MaxInt32:
			errs["id"] = MSG_NUMBER
		default:
			device.ID = uint(id)
		}
	}

	if _, bad := errs["owner"]; !bad && input.Owner != "" {
		owner := atoi(errs, "owner", input.Owner)
		if errs["owner"] == "" {
			device.Owner = &owner
		}
	}

	return result(device, errs)
}
