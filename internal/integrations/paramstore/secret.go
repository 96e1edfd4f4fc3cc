package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// tokenPayload is the expected JSON shape stored in SSM for an API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// Secret resolves an API token stored as {"token":"..."} under an SSM
// parameter. The first successful read is cached for the process lifetime;
// failures are not cached so the next request retries. Concurrent cold
// reads share one fetch, and each caller stops waiting when its own context
// is done.
type Secret struct {
	getter Getter
	name   string

	value atomic.Pointer[string]
	group singleflight.Group
}

func NewSecret(getter Getter, name string) (*Secret, error) {
	if getter == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: secret name must not be empty")
	}
	return &Secret{getter: getter, name: name}, nil
}

func (s *Secret) Value(ctx context.Context) (string, error) {
	if v := s.value.Load(); v != nil {
		return *v, nil
	}

	// The shared fetch outlives any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.name, func() (any, error) {
		return s.fetch(fetchCtx)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("paramstore: fetch token: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *Secret) fetch(ctx context.Context) (string, error) {
	if v := s.value.Load(); v != nil {
		return *v, nil
	}
	raw, err := s.getter.GetParameter(ctx, s.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch token: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal token value as JSON: %w", err)
	}
	token := strings.TrimSpace(tp.Token)
	if token == "" {
		return "", fmt.Errorf("paramstore: token in %s is empty", s.name)
	}
	s.value.Store(&token)
	return token, nil
}

// Static is a secret supplied directly, e.g. from the environment.
type Static string

func (s Static) Value(_ context.Context) (string, error) {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return "", errors.New("paramstore: secret is not configured")
	}
	return v, nil
}
