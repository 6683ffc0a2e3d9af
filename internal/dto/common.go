package dto

// ErrorResponse is the auth/admin error shape. Report intake and tracking
// routes use the flat {error}/{errors} shapes instead; the two coexist.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
