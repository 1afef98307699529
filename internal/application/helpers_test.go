package application

import (
	"context"
	"crypto/rsa"
	"sync"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/password"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type MockNotificationDispatcher struct {
	mock.Mock
}

func (m *MockNotificationDispatcher) SendVerificationCode(ctx context.Context, email, code string, purpose domain.Purpose) error {
	args := m.Called(ctx, email, code, purpose)
	return args.Error(0)
}

func (m *MockNotificationDispatcher) SendWelcome(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(user *domain.User) (*domain.TokenPair, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateToken(token string) (*domain.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claims), args.Error(1)
}

func (m *MockJWTService) RefreshAccessToken(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) GetPublicKey() *rsa.PublicKey {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*rsa.PublicKey)
}

// harness wires the code services over in-memory storage and a fake clock.
type harness struct {
	clock      *fakeClock
	codes      *memory.VerificationCodeRepository
	users      *memory.UserRepository
	tx         *memory.Transactor
	hasher     *password.Hasher
	dispatcher *MockNotificationDispatcher
	jwt        *MockJWTService
	settings   domain.OTPSettings
	store      *CodeStore
	issuer     *CodeIssuer
	generated  []string
}

func newHarness() *harness {
	h := &harness{
		clock:      newFakeClock(),
		codes:      memory.NewVerificationCodeRepository(),
		users:      memory.NewUserRepository(),
		tx:         memory.NewTransactor(),
		hasher:     password.NewHasher(bcrypt.MinCost),
		dispatcher: new(MockNotificationDispatcher),
		jwt:        new(MockJWTService),
		settings:   domain.DefaultOTPSettings(),
	}
	logger := zap.NewNop()

	h.store = NewCodeStore(h.codes, h.tx, h.settings, logger)
	h.store.now = h.clock.Now
	h.store.generate = h.nextCode

	h.issuer = NewCodeIssuer(h.store, h.users, h.dispatcher, h.settings, logger)
	h.issuer.now = h.clock.Now
	return h
}

// queue makes the store hand out the given codes in order.
func (h *harness) queue(codes ...string) {
	h.generated = append(h.generated, codes...)
}

func (h *harness) nextCode(length int) (string, error) {
	if len(h.generated) == 0 {
		return domain.GenerateNumericCode(length)
	}
	code := h.generated[0]
	h.generated = h.generated[1:]
	return code, nil
}

func (h *harness) activeCount(email string, purpose domain.Purpose) int {
	n := 0
	for _, c := range h.codes.All(email, purpose) {
		if !c.Used {
			n++
		}
	}
	return n
}

func (h *harness) registration() *RegistrationService {
	s := NewRegistrationService(h.store, h.users, h.tx, h.hasher, h.jwt, h.dispatcher,
		domain.DefaultPasswordPolicy(), h.settings, zap.NewNop())
	s.now = h.clock.Now
	return s
}

func (h *harness) passwordReset() *PasswordResetService {
	s := NewPasswordResetService(h.issuer, h.store, h.users, h.tx, h.hasher,
		domain.DefaultPasswordPolicy(), h.settings, zap.NewNop())
	s.now = h.clock.Now
	return s
}
