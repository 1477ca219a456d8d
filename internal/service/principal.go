package service

import "github.com/google/uuid"

// Principal is the authenticated caller as resolved from the access token.
type Principal struct {
	ID     uuid.UUID
	Role   string
	ShopID *uuid.UUID // set for cashiers only
}
