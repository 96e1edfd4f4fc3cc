package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"jobfit-agent/internal/domain"
)

// Items follow the next-auth DynamoDB adapter layout: pk = sk = SESSION#<token>.
const sessionKeyPrefix = "SESSION#"

// dynamodbAPI is the minimal DynamoDB interface required by SessionStore.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// SessionStore looks up web-application sessions. It never writes.
type SessionStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

func NewSessionStore(api dynamodbAPI, tableName string) (*SessionStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &SessionStore{api: api, tableName: tableName, now: time.Now}, nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// LookupSession reports whether token belongs to an unexpired session.
// Unknown, expired and empty tokens are absent, not errors.
func (s *SessionStore) LookupSession(ctx context.Context, token string) (domain.Session, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, false, nil
	}

	key := sessionKey(token)
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: key},
			"sk": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("repository: LookupSession get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Session{}, false, nil
	}

	session, err := itemToSession(token, out.Item)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("repository: LookupSession decode: %w", err)
	}
	if !session.Expires.After(s.now()) {
		return domain.Session{}, false, nil
	}
	return session, true, nil
}

func itemToSession(token string, item map[string]types.AttributeValue) (domain.Session, error) {
	userID, err := strAttr(item, "userId")
	if err != nil {
		return domain.Session{}, err
	}
	expires, err := unixAttr(item, "expires")
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: token, UserID: userID, Expires: expires}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

// unixAttr reads a number attribute holding unix seconds (the adapter's TTL
// format). Fractional seconds are truncated.
func unixAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	v, ok := item[key]
	if !ok {
		return time.Time{}, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return time.Time{}, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	secs, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}
