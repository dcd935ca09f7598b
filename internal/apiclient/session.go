package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/odyssey-erp/ledgerdesk/internal/session"
)

// Selection levels accepted by ClearSelection.
const (
	LevelGroup  = "group"
	LevelEntity = "entity"
)

// Session is the API seen through one access token.
type Session struct {
	client *Client
	token  string
}

// ForToken binds the client to a bearer token.
func (c *Client) ForToken(token string) *Session {
	return &Session{client: c, token: token}
}

// SourceFactory adapts the client to session.Registry.
func (c *Client) SourceFactory() session.SourceFactory {
	return func(token string) session.Source {
		return c.ForToken(token)
	}
}

// FetchSession loads {user, group, entity}. Missing, expired or rejected
// tokens yield the anonymous payload rather than an error.
func (s *Session) FetchSession(ctx context.Context) (session.Payload, error) {
	if s.token == "" || tokenExpired(s.token, s.client.now()) {
		return session.Payload{}, nil
	}
	var payload session.Payload
	err := s.client.do(ctx, http.MethodGet, "/session", s.token, nil, &payload)
	if errors.Is(err, ErrUnauthorized) {
		return session.Payload{}, nil
	}
	if err != nil {
		return session.Payload{}, err
	}
	return payload, nil
}

type groupList struct {
	Items []session.Group `json:"items"`
}

type entityList struct {
	Items []session.Entity `json:"items"`
}

// ListGroups returns the groups a superadmin may enter.
func (s *Session) ListGroups(ctx context.Context) ([]session.Group, error) {
	if err := s.authorized(); err != nil {
		return nil, err
	}
	var out groupList
	if err := s.client.do(ctx, http.MethodGet, "/groups", s.token, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ListEntities returns the entities of a group.
func (s *Session) ListEntities(ctx context.Context, groupID string) ([]session.Entity, error) {
	if err := s.authorized(); err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, fmt.Errorf("apiclient: group id required")
	}
	var out entityList
	path := "/groups/" + url.PathEscape(groupID) + "/entities"
	if err := s.client.do(ctx, http.MethodGet, path, s.token, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SelectGroup enters a group's context.
func (s *Session) SelectGroup(ctx context.Context, groupID string) error {
	if err := s.authorized(); err != nil {
		return err
	}
	body := map[string]string{"groupId": groupID}
	return s.client.do(ctx, http.MethodPut, "/session/group", s.token, body, nil)
}

// SelectEntity enters an entity's context.
func (s *Session) SelectEntity(ctx context.Context, entityID string) error {
	if err := s.authorized(); err != nil {
		return err
	}
	body := map[string]string{"entityId": entityID}
	return s.client.do(ctx, http.MethodPut, "/session/entity", s.token, body, nil)
}

// ClearSelection leaves the group or entity context.
func (s *Session) ClearSelection(ctx context.Context, level string) error {
	if err := s.authorized(); err != nil {
		return err
	}
	switch level {
	case LevelGroup, LevelEntity:
	default:
		return fmt.Errorf("apiclient: unknown selection level %q", level)
	}
	return s.client.do(ctx, http.MethodDelete, "/session/"+level, s.token, nil, nil)
}

func (s *Session) authorized() error {
	if s.token == "" || tokenExpired(s.token, s.client.now()) {
		return ErrUnauthorized
	}
	return nil
}

var _ session.Source = (*Session)(nil)
