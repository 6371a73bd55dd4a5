package services_test

import (
	"context"
	"errors"
	"testing"

	"securemail/internal/errs"
	"securemail/internal/models"
	"securemail/internal/repositories"
	"securemail/internal/security"
	"securemail/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mailbox struct {
	users    *repositories.MemoryUserRepository
	messages *repositories.MemoryMessageRepository
	a, b, c  *models.User
}

// newMailbox creates users A(1, a@x.com), B(2, b@x.com) and C(3, c@x.com).
func newMailbox(t *testing.T) mailbox {
	ctx := context.Background()
	users := repositories.NewMemoryUserRepository()
	mb := mailbox{users: users, messages: repositories.NewMemoryMessageRepository(users)}

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		id, err := users.CreateUser(ctx, &models.User{Email: email, Password: "pw", FirstName: "F", LastName: "L"})
		require.NoError(t, err)
		u, err := users.GetUser(ctx, id)
		require.NoError(t, err)
		switch email {
		case "a@x.com":
			mb.a = u
		case "b@x.com":
			mb.b = u
		default:
			mb.c = u
		}
	}
	return mb
}

func TestMessageService_ComposeScenario(t *testing.T) {
	ctx := context.Background()
	mb := newMailbox(t)
	publisher := new(MockPublisher)
	service := services.NewMessageService(mb.users, mb.messages, publisher, zap.NewNop())

	publisher.On("PublishMessageCreated", mock.MatchedBy(func(e map[string]interface{}) bool {
		return e["senderID"] == mb.a.ID && e["recipientID"] == mb.b.ID
	})).Return(nil).Once()

	id, err := service.Compose(ctx, security.NewPrincipal(mb.a), "hello", "hi B", "b@x.com")
	require.NoError(t, err)
	assert.NotZero(t, id)
	publisher.AssertExpectations(t)

	inbox, err := service.Inbox(ctx, mb.b.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, id, inbox[0].ID)
	assert.True(t, inbox[0].Sender.Equal(mb.a))
	assert.True(t, inbox[0].Recipient.Equal(mb.b))

	sent, err := service.Sent(ctx, mb.a.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, id, sent[0].ID)

	shown, err := service.Show(ctx, id, security.NewPrincipal(mb.b))
	require.NoError(t, err)
	assert.Equal(t, "hi B", shown.Body)

	shown, err = service.Show(ctx, id, security.NewPrincipal(mb.a))
	require.NoError(t, err)
	assert.Equal(t, "hello", shown.Subject)

	shown, err = service.Show(ctx, id, security.NewPrincipal(mb.c))
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
	assert.Nil(t, shown)

	_, err = service.Show(ctx, id, nil)
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestMessageService_ComposeUnknownRecipient(t *testing.T) {
	ctx := context.Background()
	mb := newMailbox(t)
	publisher := new(MockPublisher)
	service := services.NewMessageService(mb.users, mb.messages, publisher, zap.NewNop())

	_, err := service.Compose(ctx, security.NewPrincipal(mb.a), "hello", "body", "ghost@x.com")
	assert.ErrorIs(t, err, errs.ErrRecipientNotFound)

	sent, err := service.Sent(ctx, mb.a.ID)
	require.NoError(t, err)
	assert.Empty(t, sent, "nothing persisted")
	publisher.AssertNotCalled(t, "PublishMessageCreated", mock.Anything)
}

func TestMessageService_ComposeWithoutSender(t *testing.T) {
	mb := newMailbox(t)
	service := services.NewMessageService(mb.users, mb.messages, nil, zap.NewNop())

	_, err := service.Compose(context.Background(), nil, "s", "b", "b@x.com")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestMessageService_PublishFailureDoesNotFailCompose(t *testing.T) {
	ctx := context.Background()
	mb := newMailbox(t)
	publisher := new(MockPublisher)
	publisher.On("PublishMessageCreated", mock.Anything).Return(errors.New("broker down")).Once()
	service := services.NewMessageService(mb.users, mb.messages, publisher, zap.NewNop())

	id, err := service.Compose(ctx, security.NewPrincipal(mb.b), "s", "b", "a@x.com")
	require.NoError(t, err)
	assert.NotZero(t, id)
	publisher.AssertExpectations(t)
}

func TestMessageService_NilPublisher(t *testing.T) {
	mb := newMailbox(t)
	service := services.NewMessageService(mb.users, mb.messages, nil, zap.NewNop())

	_, err := service.Compose(context.Background(), security.NewPrincipal(mb.c), "s", "b", "a@x.com")
	assert.NoError(t, err)
}

func TestMessageService_ShowNotFound(t *testing.T) {
	mb := newMailbox(t)
	service := services.NewMessageService(mb.users, mb.messages, nil, zap.NewNop())

	_, err := service.Show(context.Background(), 42, security.NewPrincipal(mb.a))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
