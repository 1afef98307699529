package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCodeIssuer_RequestRegistrationCode(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		setup   func(h *harness)
		wantErr error
		check   func(t *testing.T, h *harness, result *IssueResult)
	}{
		{
			name:  "sends a fresh code",
			email: " A@X.com ",
			setup: func(h *harness) {
				h.queue("482913")
				h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", "482913", domain.PurposeRegistration).Return(nil)
			},
			check: func(t *testing.T, h *harness, result *IssueResult) {
				assert.True(t, result.Sent)
				assert.Equal(t, "a@x.com", result.Email)
				assert.Equal(t, 1, h.activeCount("a@x.com", domain.PurposeRegistration))
			},
		},
		{
			name:    "malformed email",
			email:   "not-an-email",
			wantErr: domain.ErrInvalidField,
		},
		{
			name:  "already registered",
			email: "taken@x.com",
			setup: func(h *harness) {
				require.NoError(t, h.users.Create(context.Background(), domain.NewUser("taken@x.com", "hash", "T", "", "", h.clock.Now())))
			},
			wantErr: domain.ErrEmailAlreadyRegistered,
		},
		{
			name:  "delivery failure keeps the code valid",
			email: "a@x.com",
			setup: func(h *harness) {
				h.queue("482913")
				h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", "482913", domain.PurposeRegistration).Return(errors.New("smtp down"))
			},
			wantErr: domain.ErrDeliveryFailed,
			check: func(t *testing.T, h *harness, _ *IssueResult) {
				_, err := h.store.FindActive(context.Background(), "a@x.com", "482913", domain.PurposeRegistration)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.setup != nil {
				tt.setup(h)
			}

			result, err := h.issuer.RequestRegistrationCode(context.Background(), tt.email, false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.check != nil {
				tt.check(t, h, result)
			}
			h.dispatcher.AssertExpectations(t)
		})
	}
}

func TestCodeIssuer_ResendCooldown(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.queue("482913", "551177")
	h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", mock.Anything, domain.PurposeRegistration).Return(nil)

	result, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.NoError(t, err)
	require.True(t, result.Sent)

	h.clock.Advance(10 * time.Second)
	result, err = h.issuer.RequestRegistrationCode(ctx, "a@x.com", true)
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.False(t, result.CanResend)
	assert.Equal(t, 20, result.WaitTime)
	assert.Len(t, h.codes.All("a@x.com", domain.PurposeRegistration), 1)

	h.clock.Advance(21 * time.Second)
	result, err = h.issuer.RequestRegistrationCode(ctx, "a@x.com", true)
	require.NoError(t, err)
	assert.True(t, result.Sent)

	stored := h.codes.All("a@x.com", domain.PurposeRegistration)
	require.Len(t, stored, 2)
	for _, c := range stored {
		if c.Code == "482913" {
			assert.True(t, c.Used)
		} else {
			assert.Equal(t, "551177", c.Code)
			assert.False(t, c.Used)
		}
	}
	h.dispatcher.AssertNumberOfCalls(t, "SendVerificationCode", 2)
}

func TestCodeIssuer_InitialCooldown(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.dispatcher.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.NoError(t, err)

	h.clock.Advance(40*time.Second + 500*time.Millisecond)
	result, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.Equal(t, 20, result.WaitTime)
}

func TestCodeIssuer_CooldownIgnoresExpiredCodes(t *testing.T) {
	h := newHarness()
	h.settings.Cooldown = time.Hour
	h.issuer.settings = h.settings
	ctx := context.Background()
	h.dispatcher.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.NoError(t, err)

	h.clock.Advance(11 * time.Minute)
	result, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.NoError(t, err)
	assert.True(t, result.Sent)
}

func TestCodeIssuer_Redeliver(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.queue("482913")
	h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", "482913", domain.PurposeRegistration).
		Return(errors.New("smtp down")).Once()
	h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", "482913", domain.PurposeRegistration).
		Return(nil).Once()

	_, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.ErrorIs(t, err, domain.ErrDeliveryFailed)

	h.clock.Advance(5 * time.Second)
	result, err := h.issuer.Redeliver(ctx, "a@x.com", domain.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.Equal(t, 25, result.WaitTime)

	h.clock.Advance(25 * time.Second)
	result, err = h.issuer.Redeliver(ctx, "a@x.com", domain.PurposeRegistration)
	require.NoError(t, err)
	assert.True(t, result.Sent)

	// Same code, no new record.
	stored := h.codes.All("a@x.com", domain.PurposeRegistration)
	require.Len(t, stored, 1)
	assert.Equal(t, h.clock.Now(), stored[0].LastSentAt)
	h.dispatcher.AssertExpectations(t)
}

func TestCodeIssuer_RedeliverWithoutCode(t *testing.T) {
	h := newHarness()

	_, err := h.issuer.Redeliver(context.Background(), "a@x.com", domain.PurposeRegistration)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
}

func TestCodeIssuer_DeliveryOutlivesRequestCancellation(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	h.dispatcher.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			sendCtx := args.Get(0).(context.Context)
			assert.NoError(t, sendCtx.Err())
			_, hasDeadline := sendCtx.Deadline()
			assert.True(t, hasDeadline)
		}).Return(nil)

	result, err := h.issuer.RequestRegistrationCode(ctx, "a@x.com", false)
	require.NoError(t, err)
	assert.True(t, result.Sent)
}

func TestCodeIssuer_ConcurrentRequestsIssueOnce(t *testing.T) {
	h := newHarness()
	h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", mock.Anything, domain.PurposeRegistration).Return(nil)

	const requests = 8
	results := make([]*IssueResult, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := h.issuer.RequestRegistrationCode(context.Background(), "a@x.com", false)
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	sent := 0
	for _, result := range results {
		require.NotNil(t, result)
		if result.Sent {
			sent++
			continue
		}
		assert.Equal(t, 60, result.WaitTime)
	}
	assert.Equal(t, 1, sent)
	assert.Len(t, h.codes.All("a@x.com", domain.PurposeRegistration), 1)
	h.dispatcher.AssertNumberOfCalls(t, "SendVerificationCode", 1)
}

func TestCodeIssuer_IssueInBackground(t *testing.T) {
	h := newHarness()
	h.queue("482913")
	release := make(chan struct{})
	h.dispatcher.On("SendVerificationCode", mock.Anything, "a@x.com", "482913", domain.PurposePasswordReset).
		Run(func(mock.Arguments) { <-release }).
		Return(errors.New("smtp down"))

	result, err := h.issuer.IssueInBackground(context.Background(), "a@x.com", domain.PurposePasswordReset, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Sent)

	// The code is committed before delivery starts.
	_, err = h.store.FindActive(context.Background(), "a@x.com", "482913", domain.PurposePasswordReset)
	require.NoError(t, err)

	result, err = h.issuer.IssueInBackground(context.Background(), "a@x.com", domain.PurposePasswordReset, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.Equal(t, 60, result.WaitTime)

	close(release)
	h.issuer.Wait()
	h.dispatcher.AssertNumberOfCalls(t, "SendVerificationCode", 1)
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		cooldown, elapsed time.Duration
		want              int
	}{
		{cooldown: 30 * time.Second, elapsed: 0, want: 30},
		{cooldown: 30 * time.Second, elapsed: 29*time.Second + time.Millisecond, want: 1},
		{cooldown: 30 * time.Second, elapsed: 30 * time.Second, want: 0},
		{cooldown: 30 * time.Second, elapsed: time.Minute, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, remaining(tt.cooldown, tt.elapsed))
	}
}
