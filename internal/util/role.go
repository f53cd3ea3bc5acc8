package util

import (
	"slices"

	"github.com/SeakMengs/EventHub/internal/constant"
)

var rolePermissions = map[constant.EventRole][]constant.TemplatePermission{
	constant.EventRoleOrganizer: {
		constant.TemplateFieldAdd,
		constant.TemplateFieldUpdate,
		constant.TemplateFieldRemove,
		constant.TemplateFieldMove,
		constant.TemplateBackgroundUpdate,
		constant.TemplateSettingsUpdate,
	},
	constant.EventRoleAdmin: {
		constant.TemplateFieldAdd,
		constant.TemplateFieldUpdate,
		constant.TemplateFieldRemove,
		constant.TemplateFieldMove,
		constant.TemplateBackgroundUpdate,
		constant.TemplateSettingsUpdate,
	},
	constant.EventRoleNone: {},
}

// Role names carried in the JWT "role" claim
func ParseEventRole(name string) constant.EventRole {
	switch name {
	case "organizer":
		return constant.EventRoleOrganizer
	case "admin":
		return constant.EventRoleAdmin
	default:
		return constant.EventRoleNone
	}
}

// checks if all permissions are granted by at least one of the roles.
func HasPermission(roles []constant.EventRole, permissions []constant.TemplatePermission) bool {
	for _, permission := range permissions {
		hasPermission := false
		for _, role := range roles {
			if slices.Contains(rolePermissions[role], permission) {
				hasPermission = true
				break
			}
		}
		if !hasPermission {
			return false
		}
	}
	return true
}

func HasRole(roles []constant.EventRole, requiredRoles []constant.EventRole) bool {
	for _, role := range requiredRoles {
		if slices.Contains(roles, role) {
			return true
		}
	}
	return false
}
