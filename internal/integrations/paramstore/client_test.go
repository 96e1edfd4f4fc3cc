package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	out    *ssm.GetParameterOutput
	err    error
	inputs []*ssm.GetParameterInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.inputs = append(f.inputs, in)
	return f.out, f.err
}

func valueOutput(v string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name:  aws.String("p"),
		Value: aws.String(v),
		Type:  types.ParameterTypeSecureString,
	}}
}

func mustNew(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	c, err := New(api, "/jobfit/")
	require.NoError(t, err)
	return c
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "/jobfit")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")

	_, err = New(&fakeAPI{}, " / ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "prefix")
}

func TestName_JoinsPrefix(t *testing.T) {
	c := mustNew(t, &fakeAPI{})
	require.Equal(t, "/jobfit/openai-token", c.Name("openai-token"))
	require.Equal(t, "/jobfit/openai-token", c.Name("/openai-token"))
}

func TestGetParameter_HappyPath_RequestsDecryption(t *testing.T) {
	api := &fakeAPI{out: valueOutput(`{"token":"v"}`)}
	c := mustNew(t, api)

	v, err := c.GetParameter(context.Background(), "/jobfit/openai-token")
	require.NoError(t, err)
	require.Equal(t, `{"token":"v"}`, v)
	require.Len(t, api.inputs, 1)
	require.Equal(t, "/jobfit/openai-token", aws.ToString(api.inputs[0].Name))
	require.True(t, aws.ToBool(api.inputs[0].WithDecryption))
}

func TestGetParameter_MissingValue(t *testing.T) {
	c := mustNew(t, &fakeAPI{out: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: aws.String("p")}}})
	_, err := c.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_APIError(t *testing.T) {
	c := mustNew(t, &fakeAPI{err: errors.New("boom")})
	_, err := c.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	c := mustNew(t, &fakeAPI{})
	_, err := c.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestClient_Secret_ReadsPrefixedToken(t *testing.T) {
	api := &fakeAPI{out: valueOutput(`{"token":"pplx-123"}`)}
	c := mustNew(t, api)

	s, err := c.Secret("perplexity-token")
	require.NoError(t, err)
	v, err := s.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, "pplx-123", v)
	require.Equal(t, "/jobfit/perplexity-token", aws.ToString(api.inputs[0].Name))
}
