// Package registration gates account creation behind a verified one-time password.
//
// A Machine is owned by exactly one visitor's registration form. It coordinates the
// send and verify calls to the directory API and runs the resend countdown as a
// cancellable background task that never outlives the machine.
package registration

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"
)

type State int

const (
	StateIdle State = iota
	StateOtpSent
	StateVerifying
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOtpSent:
		return "otp_sent"
	case StateVerifying:
		return "verifying"
	case StateVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// OTPLength is the exact length an OTP must have before it is sent for verification.
const OTPLength = 6

// DefaultCountdown is the resend cooldown after an OTP is sent.
const DefaultCountdown = 60

var mobilePattern = regexp.MustCompile(`^\+[1-9]\d{10,13}$`)

// Local validation failures. Their text is shown to the visitor as-is.
var (
	ErrMissingContact   = errors.New("Please enter both email and mobile number first.")
	ErrInvalidMobile    = errors.New("Please enter mobile in correct format: +91xxxxxxxxxx")
	ErrInvalidOTPLength = errors.New("Please enter a valid 6-digit OTP.")
	ErrPasswordMismatch = errors.New("Passwords do not match!")
	ErrOTPNotVerified   = errors.New("Please verify your OTP first!")
	ErrOTPNotSent       = errors.New("Please request an OTP first.")
	ErrResendCooldown   = errors.New("Please wait before requesting another OTP.")
	ErrContactChanged   = errors.New("Email or mobile changed after verification. Please verify again.")
	ErrAlreadyVerified  = errors.New("OTP already verified.")
	ErrBusy             = errors.New("Another request is in progress. Please wait.")
	ErrClosed           = errors.New("Registration form expired. Please reload the page.")
)

// ValidMobile reports whether mobile is "+" followed by 11 to 14 digits with a
// nonzero leading digit.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// Remote is the directory API surface the machine drives.
type Remote interface {
	SendOTP(ctx context.Context, email, mobile string) error
	VerifyOTP(ctx context.Context, email, mobile, otp string) error
	Register(ctx context.Context, sub Submission) error
}

// Submission is the registration form as posted.
type Submission struct {
	Username        string
	Email           string
	Mobile          string
	Password        string
	ConfirmPassword string
	OTP             string
}

// Snapshot is a consistent read of the machine for rendering.
type Snapshot struct {
	State     State
	Remaining int
	Email     string
	Mobile    string
	CanSend   bool
}

type Option func(*Machine)

// WithCountdown sets the cooldown length in ticks.
func WithCountdown(seconds int) Option {
	return func(m *Machine) {
		if seconds > 0 {
			m.countdown = seconds
		}
	}
}

// WithTick overrides the countdown tick, one second by default.
func WithTick(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.tick = d
		}
	}
}

type Machine struct {
	remote    Remote
	countdown int
	tick      time.Duration

	mu        sync.Mutex
	state     State
	email     string
	mobile    string
	otp       string
	remaining int
	inFlight  bool
	closed    bool

	stopCountdown context.CancelFunc
	countdownDone chan struct{}
}

// New mounts a fresh machine in StateIdle.
func New(remote Remote, opts ...Option) *Machine {
	m := &Machine{
		remote:    remote,
		countdown: DefaultCountdown,
		tick:      time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:     m.state,
		Remaining: m.remaining,
		Email:     m.email,
		Mobile:    m.mobile,
		CanSend:   m.canSendLocked(),
	}
}

func (m *Machine) canSendLocked() bool {
	return !m.closed && !m.inFlight && m.remaining == 0 &&
		(m.state == StateIdle || m.state == StateOtpSent)
}

// SendOTP validates the contact fields and asks the API to send a code. On
// success the machine enters StateOtpSent and a fresh countdown starts. On
// failure the state is left as it was.
func (m *Machine) SendOTP(ctx context.Context, email, mobile string) error {
	if email == "" || mobile == "" {
		return ErrMissingContact
	}
	if !ValidMobile(mobile) {
		return ErrInvalidMobile
	}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.state == StateVerified:
		m.mu.Unlock()
		return ErrAlreadyVerified
	case m.inFlight || m.state == StateVerifying:
		m.mu.Unlock()
		return ErrBusy
	case m.remaining > 0:
		m.mu.Unlock()
		return ErrResendCooldown
	}
	m.inFlight = true
	m.mu.Unlock()

	err := m.remote.SendOTP(ctx, email, mobile)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if m.closed {
		return ErrClosed
	}
	if err != nil {
		return err
	}
	m.email, m.mobile = email, mobile
	m.otp = ""
	m.state = StateOtpSent
	m.startCountdownLocked()
	return nil
}

// VerifyOTP checks the code against the API. Codes of the wrong length are
// rejected without a remote call. Remote failure returns the machine to
// StateOtpSent with resend available.
func (m *Machine) VerifyOTP(ctx context.Context, otp string) error {
	if utf8.RuneCountInString(otp) != OTPLength {
		return ErrInvalidOTPLength
	}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.state == StateVerified:
		m.mu.Unlock()
		return ErrAlreadyVerified
	case m.state == StateVerifying || m.inFlight:
		m.mu.Unlock()
		return ErrBusy
	case m.state != StateOtpSent:
		m.mu.Unlock()
		return ErrOTPNotSent
	}
	m.state = StateVerifying
	m.stopCountdownLocked()
	email, mobile := m.email, m.mobile
	m.mu.Unlock()

	err := m.remote.VerifyOTP(ctx, email, mobile, otp)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err != nil {
		m.state = StateOtpSent
		return err
	}
	m.state = StateVerified
	m.otp = otp
	return nil
}

// Submit registers the account. The password confirmation is checked first,
// then the OTP gate; neither failure reaches the API. The code sent upstream
// is the one that passed verification, whatever the form now holds.
func (m *Machine) Submit(ctx context.Context, sub Submission) error {
	if sub.Password != sub.ConfirmPassword {
		return ErrPasswordMismatch
	}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.state != StateVerified || sub.OTP == "":
		m.mu.Unlock()
		return ErrOTPNotVerified
	case sub.Email != m.email || sub.Mobile != m.mobile:
		m.mu.Unlock()
		return ErrContactChanged
	case m.inFlight:
		m.mu.Unlock()
		return ErrBusy
	}
	m.inFlight = true
	sub.OTP = m.otp
	m.mu.Unlock()

	err := m.remote.Register(ctx, sub)

	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.Close()
	return nil
}

// Close tears the machine down and returns once its countdown goroutine has
// exited. It is safe to call more than once.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopCountdownLocked()
	done := m.countdownDone
	m.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (m *Machine) startCountdownLocked() {
	m.stopCountdownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.stopCountdown = cancel
	m.countdownDone = done
	m.remaining = m.countdown

	go m.runCountdown(ctx, done)
}

func (m *Machine) stopCountdownLocked() {
	if m.stopCountdown != nil {
		m.stopCountdown()
		m.stopCountdown = nil
	}
	m.remaining = 0
}

func (m *Machine) runCountdown(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		if ctx.Err() != nil {
			m.mu.Unlock()
			return
		}
		m.remaining--
		if m.remaining <= 0 {
			m.remaining = 0
			if m.stopCountdown != nil {
				m.stopCountdown()
				m.stopCountdown = nil
			}
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()
	}
}
