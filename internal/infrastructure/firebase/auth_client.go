package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (f *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

// TestConnection proves credentials and connectivity by listing one user.
func (f *AuthClient) TestConnection(ctx context.Context) error {
	iter := f.client.Users(ctx, "")
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}
