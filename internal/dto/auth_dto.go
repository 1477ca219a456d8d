package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrincipalResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	ShopID *string `json:"shopId,omitempty"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresIn int               `json:"expiresIn"` // seconds
	User      PrincipalResponse `json:"user"`
}
