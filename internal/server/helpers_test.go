package server

import "github.com/festy23/stagegate/internal/identity"

func principal(id, role string) identity.Principal {
	r, _ := identity.ParseRole(role)
	return identity.Principal{UserID: id, Role: r}
}
