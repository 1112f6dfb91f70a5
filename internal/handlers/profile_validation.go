package handlers

import (
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateUpdateProfileRequest(req updateProfileRequest) string {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			return "name must be between 1 and 100 characters"
		}
	}
	if req.Bio != nil && len(*req.Bio) > 500 {
		return "bio must not exceed 500 characters"
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < 3 || len(username) > 30 {
			return "username must be between 3 and 30 characters"
		}
		if !usernamePattern.MatchString(username) {
			return "username may only contain letters, digits, and underscores"
		}
	}
	return ""
}
