package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shandysiswandi/tailor/internal/pkg/docstore"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	indexEmail  = "email"
	indexAPIKey = "api_key"
)

// Collections names the two namespaces users live in.
type Collections struct {
	Users    string
	Disabled string
}

type DB struct {
	store docstore.Store
	col   Collections
	ins   instrument.Instrumentation
}

func NewDB(store docstore.Store, col Collections, ins instrument.Instrumentation) *DB {
	if col.Users == "" {
		col.Users = "users"
	}
	if col.Disabled == "" {
		col.Disabled = "disabled"
	}
	return &DB{store: store, col: col, ins: ins}
}

func (s *DB) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return goerror.ErrNotFound
	case errors.Is(err, docstore.ErrConflict):
		return goerror.ErrConflict
	default:
		return err
	}
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("tailor.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func encode(user entity.User) ([]byte, docstore.Index, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, nil, err
	}
	return data, docstore.Index{indexEmail: user.Email, indexAPIKey: user.APIKey}, nil
}

func decode(data []byte) (*entity.User, error) {
	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	user.EnsureCollections()
	return &user, nil
}

func (s *DB) GetUser(ctx context.Context, id string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUser")
	defer func() { s.endSpan(span, err) }()

	data, err := s.store.Get(ctx, s.col.Users, id)
	if err = s.mapError(err); err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *DB) findBy(ctx context.Context, name, collection, field, value string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, name)
	defer func() { s.endSpan(span, err) }()

	if value == "" {
		return nil, goerror.ErrNotFound
	}

	data, err := s.store.FindOne(ctx, collection, field, value)
	if err = s.mapError(err); err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.findBy(ctx, "GetUserByEmail", s.col.Users, indexEmail, email)
}

// GetDisabledUserByEmail looks the email up in the disabled namespace.
func (s *DB) GetDisabledUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.findBy(ctx, "GetDisabledUserByEmail", s.col.Disabled, indexEmail, email)
}

func (s *DB) GetUserByAPIKey(ctx context.Context, apiKey string) (*entity.User, error) {
	return s.findBy(ctx, "GetUserByAPIKey", s.col.Users, indexAPIKey, apiKey)
}

func (s *DB) ListUsers(ctx context.Context) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "ListUsers")
	defer func() { s.endSpan(span, err) }()

	docs, err := s.store.List(ctx, s.col.Users)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	users := make([]entity.User, 0, len(docs))
	for _, doc := range docs {
		u, err := decode(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	span.SetAttributes(attribute.Int("tailor.users.count", len(users)))
	return users, nil
}

func (s *DB) CreateUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	data, index, err := encode(user)
	if err != nil {
		return err
	}
	return s.mapError(s.store.Create(ctx, s.col.Users, user.ID, data, index))
}

func (s *DB) PutUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "PutUser")
	defer func() { s.endSpan(span, err) }()

	data, index, err := encode(user)
	if err != nil {
		return err
	}
	return s.mapError(s.store.Put(ctx, s.col.Users, user.ID, data, index))
}

func (s *DB) DeleteUser(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteUser")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.store.Delete(ctx, s.col.Users, id))
}

// DisableUser copies user into the disabled namespace, then removes it from
// the active one.
func (s *DB) DisableUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "DisableUser")
	defer func() { s.endSpan(span, err) }()

	return s.move(ctx, user.ID, s.col.Users, s.col.Disabled)
}

func (s *DB) EnableUser(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "EnableUser")
	defer func() { s.endSpan(span, err) }()

	return s.move(ctx, id, s.col.Disabled, s.col.Users)
}

func (s *DB) move(ctx context.Context, id, from, to string) error {
	data, err := s.store.Get(ctx, from, id)
	if err != nil {
		return s.mapError(err)
	}

	user, err := decode(data)
	if err != nil {
		return err
	}
	_, index, err := encode(*user)
	if err != nil {
		return err
	}

	if err := s.store.Put(ctx, to, id, data, index); err != nil {
		return s.mapError(err)
	}
	return s.mapError(s.store.Delete(ctx, from, id))
}
