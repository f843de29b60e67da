// Package validator wraps go-playground/validator with field names taken from
// json, form or query struct tags and human-readable messages.
//
//	type lookupQuery struct {
//		Email string `query:"email" validate:"required,email"`
//	}
//
//	if err := validator.Struct(q); err != nil {
//		if verrs, ok := validator.ExtractValidationErrors(err); ok {
//			_ = verrs.Fields() // {"email": "must be a valid email address"}
//		}
//	}
package validator
