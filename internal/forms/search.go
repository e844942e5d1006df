package forms

import "net/url"

type searchInput struct {
	ID string `form:"id" validate:"required,number"`
}

type Search struct {
	ID int
}

func ParseSearch(values url.Values) (Search, error) {
	input := searchInput{ID: value(values, "id")}

	errs := check(input)
	if errs == nil {
		errs = FieldErrors{}
	}

	var search Search
	if _, bad := errs["id"]; !bad {
		search.ID = atoi(errs, "id", input.ID)
	}
	return result(search, errs)
}
