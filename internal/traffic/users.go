package traffic

import (
	"context"
	"strings"

	"temple_pass/internal/models"
)

// RegisterUser stores a user whose password is already hashed. An empty role
// means commuter.
func (s *Service) RegisterUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Password == "" {
		return invalid("email and password are required")
	}
	switch user.Role {
	case "":
		user.Role = models.RoleCommuter
	case models.RoleCommuter, models.RoleAdmin:
	default:
		return invalid("role %q", user.Role)
	}
	if user.VehicleType != "" && !user.VehicleType.Valid() {
		return invalid("vehicle type %q", user.VehicleType)
	}
	return s.store.CreateUser(ctx, user)
}

func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
