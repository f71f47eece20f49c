// Package session holds the process-wide client state the rest of the code
// consults before touching the network: the bearer token and the sticky
// online flag. It is an explicit object handed to constructors, not a global,
// so tests can run isolated instances side by side.
package session

import (
	"sync"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/store"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/sirupsen/logrus"
)

// Notifier receives the transient, user-facing message for a remote error.
// The UI layer supplies its own implementation; LogNotifier is the default.
type Notifier interface {
	Toast(message string)
}

type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Toast(message string) {
	n.Logger.WithField("toast", true).Info(message)
}

type Session struct {
	store    *store.LocalStore
	logger   *logrus.Logger
	notifier Notifier

	mu     sync.RWMutex
	token  string
	online bool
}

// New loads the persisted token and returns a session. The sticky online flag
// always starts false; only a successful login flips it, never a mere restart
// with a leftover token.
func New(st *store.LocalStore, logger *logrus.Logger, notifier Notifier) (*Session, error) {
	if logger == nil {
		logger = config.GetLogger()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	token, err := st.Token()
	if err != nil {
		return nil, err
	}
	return &Session{store: st, logger: logger, notifier: notifier, token: token}, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.store.SetToken(token)
}

func (s *Session) ClearToken() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return s.store.ClearToken()
}

// CheckLoginStatus reports whether a usable credential is present.
func (s *Session) CheckLoginStatus() bool {
	return utils.TokenUsable(s.Token())
}

// IsOnline answers "should remote calls be attempted right now": a usable
// token AND the sticky flag. A single failed call never flips the flag; that
// decision belongs to the operation that observed an unrecoverable failure.
func (s *Session) IsOnline() bool {
	s.mu.RLock()
	online := s.online
	s.mu.RUnlock()
	return online && s.CheckLoginStatus()
}

func (s *Session) SetOnline(on bool) {
	s.mu.Lock()
	s.online = on
	s.mu.Unlock()
	// Mirror to the durable footprint; in-memory state stays authoritative.
	if err := s.store.SetOnlineFlag(on); err != nil {
		config.LogError(s.logger, "session", "SetOnline", "persist online flag", on, err)
	}
}

// NotifyError forwards a remote failure to the UI as a short toast message.
func (s *Session) NotifyError(err error) {
	if err == nil {
		return
	}
	s.notifier.Toast(utils.UserMessage(err))
}

func (s *Session) Logger() *logrus.Logger {
	return s.logger
}
