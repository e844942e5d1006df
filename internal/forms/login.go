package forms

import "net/url"

type loginInput struct {
	Number   string `form:"number" validate:"required,number"`
	Password string `form:"password" validate:"required"`
}

type Login struct {
	Number   int
	Password string
	Remember bool
}

// ParseLogin reads the number, password and remember_me fields.
func ParseLogin(values url.Values) (Login, error) {
	input := loginInput{
		Number:   value(values, "number"),
		Password: values.Get("password"),
	}

	errs := check(input)
	if errs == nil {
		errs = FieldErrors{}
	}

	login := Login{Password: input.Password, Remember: checkbox(values, "remember_me")}
	if _, bad := errs["number"]; !bad {
		login.Number = atoi(errs, "number", input.Number)
	}
	return result(login, errs)
}
