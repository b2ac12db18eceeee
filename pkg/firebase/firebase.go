package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and its clients
type App struct {
	FirebaseApp     *firebase.App
	AuthClient      *auth.Client
	MessagingClient *messaging.Client
}

// InitFirebase initializes the Firebase application, authentication and messaging clients
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	return &App{FirebaseApp: firebaseApp, AuthClient: authClient, MessagingClient: messagingClient}, nil
}

// ErrNoEmail is returned when the auth record exists but carries no email address.
var ErrNoEmail = errors.New("auth user has no email")

// EmailResolver looks up a user's real email address in Firebase Auth.
type EmailResolver struct {
	client *auth.Client
}

func NewEmailResolver(client *auth.Client) *EmailResolver {
	return &EmailResolver{client: client}
}

// ResolveEmail returns the primary email of the auth user with the given UID.
func (r *EmailResolver) ResolveEmail(ctx context.Context, uid string) (string, error) {
	user, err := r.client.GetUser(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("get auth user %s: %w", uid, err)
	}
	if user.Email == "" {
		return "", ErrNoEmail
	}
	return user.Email, nil
}
