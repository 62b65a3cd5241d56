package lambdaboot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpang/past-forward/internal/config"
)

type fakeSSM struct {
	value string
	err   error
	calls int
	input *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func TestLoadGeminiKey_EnvSkipsSSM(t *testing.T) {
	getter := &fakeSSM{value: "from-ssm"}
	cfg := &config.Config{GeminiAPIKey: "from-env", SSMAPIKeyParam: "/p"}

	key, err := LoadGeminiKey(context.Background(), getter, cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
	assert.Equal(t, 0, getter.calls)
}

func TestLoadGeminiKey_LegacyEnvSkipsSSM(t *testing.T) {
	getter := &fakeSSM{value: "from-ssm"}
	cfg := &config.Config{LegacyAPIKey: "legacy", SSMAPIKeyParam: "/p"}

	key, err := LoadGeminiKey(context.Background(), getter, cfg)
	require.NoError(t, err)
	assert.Equal(t, "legacy", key)
	assert.Equal(t, 0, getter.calls)
}

func TestLoadGeminiKey_FromSSM(t *testing.T) {
	getter := &fakeSSM{value: "from-ssm"}
	cfg := &config.Config{SSMAPIKeyParam: "/past-forward/prod/gemini-api-key"}

	key, err := LoadGeminiKey(context.Background(), getter, cfg)
	require.NoError(t, err)

	assert.Equal(t, "from-ssm", key)
	assert.Equal(t, "from-ssm", cfg.APIKey())
	require.Equal(t, 1, getter.calls)
	assert.Equal(t, "/past-forward/prod/gemini-api-key", aws.ToString(getter.input.Name))
	assert.True(t, aws.ToBool(getter.input.WithDecryption))
}

func TestLoadGeminiKey_SSMError(t *testing.T) {
	getter := &fakeSSM{err: errors.New("AccessDenied")}
	cfg := &config.Config{SSMAPIKeyParam: "/p"}

	_, err := LoadGeminiKey(context.Background(), getter, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestLoadGeminiKey_EmptyParameter(t *testing.T) {
	_, err := LoadGeminiKey(context.Background(), &fakeSSM{}, &config.Config{SSMAPIKeyParam: "/p"})
	assert.Error(t, err)
}

func TestLoadGeminiKey_NoGetter(t *testing.T) {
	_, err := LoadGeminiKey(context.Background(), nil, &config.Config{})
	assert.ErrorIs(t, err, config.ErrNoAPIKey)
}

func TestStartupLog(t *testing.T) {
	assert.NotNil(t, StartupLog("pastforward-lambda", time.Now().Add(-time.Second)))
}
