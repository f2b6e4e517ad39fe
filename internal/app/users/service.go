package users

import "context"

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Service exposes user-related workflows.
type Service interface {
	Signup(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type service struct {
	store  Store
	tokens TokenIssuer
}

// New wires a Service backed by the provided Store.
func New(store Store, tokens TokenIssuer) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, username, password string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(userID)
}
