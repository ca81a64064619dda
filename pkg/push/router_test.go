package push_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/push"
)

func TestRouter(t *testing.T) {
	t.Parallel()

	mobile := &fakeProvider{sendErrs: map[string]error{"android-2": push.ErrTokenInvalid}}
	router := push.NewRouter(map[devicetoken.Platform]push.Provider{
		devicetoken.PlatformAndroid: mobile,
		devicetoken.PlatformIOS:     mobile,
		devicetoken.PlatformWeb:     nil,
	})

	tokens := []devicetoken.DeviceToken{
		{ID: "1", Token: "android-1", Platform: devicetoken.PlatformAndroid},
		{ID: "2", Token: "web-1", Platform: devicetoken.PlatformWeb},
		{ID: "3", Token: "android-2", Platform: devicetoken.PlatformAndroid},
		{ID: "4", Token: "ios-1", Platform: devicetoken.PlatformIOS},
	}

	results, err := router.SendMulticast(context.Background(), tokens, push.Message{Title: "x"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, tokens[i].Token, r.Token, "results stay aligned with input")
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, push.ErrNoProvider)
	assert.True(t, results[2].Invalid())
	assert.NoError(t, results[3].Err)

	assert.ErrorIs(t, router.Validate(context.Background(), tokens[1]), push.ErrNoProvider)
	assert.NoError(t, router.Validate(context.Background(), tokens[0]))
}

func TestDevProvider(t *testing.T) {
	t.Parallel()

	p := push.NewDevProvider(logger.Noop())
	results, err := p.SendMulticast(context.Background(), []devicetoken.DeviceToken{{Token: "a"}, {Token: "b"}}, push.Message{Title: "t"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.MessageID)
	}
	assert.NoError(t, p.Validate(context.Background(), devicetoken.DeviceToken{Token: "a"}))
}

func TestBackoff_NextInterval(t *testing.T) {
	t.Parallel()

	b := push.Backoff{InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2}

	assert.Zero(t, b.NextInterval(0))
	assert.Equal(t, 100*time.Millisecond, b.NextInterval(1))
	assert.Equal(t, 200*time.Millisecond, b.NextInterval(2))
	assert.Equal(t, 400*time.Millisecond, b.NextInterval(3))
	assert.Equal(t, time.Second, b.NextInterval(10))

	jittered := push.Backoff{InitialInterval: 100 * time.Millisecond, JitterFactor: 0.5}
	for range 20 {
		d := jittered.NextInterval(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}
