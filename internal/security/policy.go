package security

import "securemail/internal/models"

// CanView decides whether principal may read target. Target may be nil (no specific
// message), a message, or a slice of messages; any other shape is denied.
func CanView(principal *Principal, target interface{}) bool {
	if principal == nil || principal.User == nil {
		return false
	}

	switch t := target.(type) {
	case nil:
		return true
	case *models.Message:
		if t == nil {
			return true
		}
		return canViewMessage(principal.User, t)
	case models.Message:
		return canViewMessage(principal.User, &t)
	case []models.Message:
		for i := range t {
			if !canViewMessage(principal.User, &t[i]) {
				return false
			}
		}
		return true
	case []*models.Message:
		for _, m := range t {
			if m == nil || !canViewMessage(principal.User, m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func canViewMessage(user *models.User, message *models.Message) bool {
	return user.Equal(message.Sender) || user.Equal(message.Recipient)
}
