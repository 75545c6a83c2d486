// Package tap is a client for astronomical catalog services that speak the
// Table Access Protocol (TAP) with ADQL queries.
//
// A query is sent synchronously and the columnar JSON answer
// ({"metadata": [...], "data": [[...], ...]}) is reshaped into one record
// per row, decoded into any Go type:
//
//	type Star struct {
//		RecNo   int      `json:"recno"`
//		RAJ2000 float64  `json:"RAJ2000"`
//		DEJ2000 float64  `json:"DEJ2000"`
//		BV      *float64 `json:"B-V"`
//	}
//
//	res, err := tap.Query[Star](ctx, tap.DefaultClient(), `SELECT TOP 10 * FROM "I/261/fonac"`)
//
// Non-pointer struct fields are mandatory: a row without the key, or with
// a null value for it, fails the whole call. Pointer fields are optional.
// Numbers are converted from their exact JSON text, so 64-bit identifiers
// survive and a value the field cannot hold is an error.
//
// Queries can also be assembled with a staged builder whose Build and Send
// methods only exist once both a SELECT and a FROM fragment were given:
//
//	res, err := tap.NewBuilder[Star](client).
//		Select("SELECT TOP 10 *").
//		From(`FROM "I/261/fonac"`).
//		Where("WHERE Bmag < 12").
//		Send(ctx)
package tap
