package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	lastGetInput *dynamodb.GetItemInput
	calls        int
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.calls++
	f.lastGetInput = in
	return f.getOut, f.getErr
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func makeSessionItem(token, userID string, expires time.Time) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk":           &types.AttributeValueMemberS{Value: sessionKey(token)},
		"sk":           &types.AttributeValueMemberS{Value: sessionKey(token)},
		"type":         &types.AttributeValueMemberS{Value: "SESSION"},
		"sessionToken": &types.AttributeValueMemberS{Value: token},
		"userId":       &types.AttributeValueMemberS{Value: userID},
		"expires":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expires.Unix())},
	}
}

func mustNewStore(t *testing.T, db *fakeDynamo) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(db, "next-auth")
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewSessionStore_Validates(t *testing.T) {
	_, err := NewSessionStore(nil, "next-auth")
	require.Error(t, err)

	_, err = NewSessionStore(&fakeDynamo{}, " ")
	require.Error(t, err)
}

func TestLookupSession_Active(t *testing.T) {
	expires := fixedNow.Add(24 * time.Hour)
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeSessionItem("tok-1", "user-1", expires)}}
	s := mustNewStore(t, db)

	session, ok, err := s.LookupSession(context.Background(), " tok-1 ")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-1", session.Token)
	require.Equal(t, "user-1", session.UserID)
	require.True(t, session.Expires.Equal(expires))

	require.Equal(t, "next-auth", aws.ToString(db.lastGetInput.TableName))
	pk, ok := db.lastGetInput.Key["pk"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	require.Equal(t, "SESSION#tok-1", pk.Value)
}

func TestLookupSession_Expired(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeSessionItem("tok-1", "user-1", fixedNow.Add(-time.Minute))}}
	s := mustNewStore(t, db)

	_, ok, err := s.LookupSession(context.Background(), "tok-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupSession_Missing(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{}})

	_, ok, err := s.LookupSession(context.Background(), "tok-unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupSession_EmptyTokenSkipsDynamo(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewStore(t, db)

	_, ok, err := s.LookupSession(context.Background(), "  ")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, db.calls)
}

func TestLookupSession_GetItemError(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{getErr: errors.New("boom")})

	_, _, err := s.LookupSession(context.Background(), "tok-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "LookupSession")
	require.Contains(t, err.Error(), "boom")
}

func TestLookupSession_MalformedItem(t *testing.T) {
	cases := map[string]map[string]types.AttributeValue{
		"missing userId": {
			"expires": &types.AttributeValueMemberN{Value: "1900000000"},
		},
		"expires not a number": {
			"userId":  &types.AttributeValueMemberS{Value: "u"},
			"expires": &types.AttributeValueMemberS{Value: "2030-01-01T00:00:00Z"},
		},
		"expires unparsable": {
			"userId":  &types.AttributeValueMemberS{Value: "u"},
			"expires": &types.AttributeValueMemberN{Value: "soon"},
		},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			s := mustNewStore(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: item}})
			_, _, err := s.LookupSession(context.Background(), "tok-1")
			require.Error(t, err)
			require.Contains(t, err.Error(), "decode")
		})
	}
}
