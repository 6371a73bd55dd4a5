package repositories

import (
	"context"
	"fmt"

	"securemail/internal/models"
)

// Seed loads the demo users and their first message into empty repositories.
// It mirrors the seed migration used by the SQL stores.
func Seed(ctx context.Context, users UserRepository, messages MessageRepository) error {
	rob := &models.User{Email: "rob@example.org", Password: "penguin", FirstName: "Rob", LastName: "Winch"}
	luke := &models.User{Email: "luke@example.com", Password: "lion", FirstName: "Luke", LastName: "Taylor"}

	for _, u := range []*models.User{rob, luke} {
		id, err := users.CreateUser(ctx, u)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		u.ID = id
	}

	_, err := messages.CreateMessage(ctx, &models.Message{
		Subject:   "Vulnerabilities Found?",
		Body:      "I believe I found some vulnerabilities in the message application. It may be good to ensure that you secure the application.",
		Sender:    luke,
		Recipient: rob,
	})
	if err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}
	return nil
}
