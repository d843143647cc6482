package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and the clients the service uses.
type App struct {
	FirebaseApp     *firebase.App
	AuthClient      *auth.Client
	MessagingClient *messaging.Client
}

// InitFirebase initializes the Firebase app, its auth client and, when withMessaging is set, the FCM client.
func InitFirebase(ctx context.Context, credentialsPath string, withMessaging bool) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	app := &App{FirebaseApp: firebaseApp, AuthClient: authClient}
	if withMessaging {
		app.MessagingClient, err = firebaseApp.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
		}
	}
	return app, nil
}

// Identity is the subset of a verified Firebase ID token the service needs.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// VerifyIDToken checks a client ID token and extracts the caller's identity.
func (a *App) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := a.AuthClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return IdentityFromClaims(token.UID, token.Claims), nil
}

func IdentityFromClaims(uid string, claims map[string]interface{}) *Identity {
	id := &Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	return id
}
