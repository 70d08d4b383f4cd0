// package session holds the access/refresh token pair for the signed-in
// user across two durability tiers and broadcasts logout events to the
// rest of the application.
//
// Exactly one tier is authoritative at a time: writes target the tier
// selected by the remember flag and clear the other, so reads never see a
// split-brain token pair.
package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djsadd/elibrary/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Event is a session lifecycle notification.
type Event int

const (
	// EventLogout fires on explicit logout, expiry, or a failed refresh.
	EventLogout Event = iota
	// EventRefreshed fires when the token pair is replaced by a successful refresh.
	EventRefreshed
)

// Tier is one durability level for the stored token pair.
// Read returns a nil token when the tier is empty.
type Tier interface {
	Read() (*oauth2.Token, error)
	Write(tok *oauth2.Token) error
	Clear() error
}

// Session is the current credential state as seen by callers.
type Session struct {
	Token   *oauth2.Token // nil when signed out
	Durable bool          // true when the durable tier holds the pair
}

// AccessToken returns the bearer credential or "" when signed out.
func (s Session) AccessToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

// RefreshToken returns the refresh credential or "" when absent.
func (s Session) RefreshToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.RefreshToken
}

// Store coordinates the two tiers and the logout broadcast.
type Store struct {
	mu        sync.Mutex
	durable   Tier
	ephemeral Tier
	logger    *log.Logger
	subs      []chan Event
	now       func() time.Time
}

// NewStore creates a session store over a durable and an ephemeral tier.
func NewStore(durable, ephemeral Tier, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger,
		now:       time.Now,
	}
}

// Get reads the live token pair, checking the durable tier first.
func (s *Store) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() Session {
	if tok, err := s.durable.Read(); err != nil {
		s.logger.Warnf("durable session read failed: %v", err)
	} else if tok != nil {
		return Session{Token: tok, Durable: true}
	}

	if tok, err := s.ephemeral.Read(); err != nil {
		s.logger.Warnf("ephemeral session read failed: %v", err)
	} else if tok != nil {
		return Session{Token: tok}
	}

	return Session{}
}

// Set stores a new token pair after login. remember selects the durable
// tier; the other tier is cleared so only one holds the pair.
func (s *Store) Set(access, refresh string, remember bool) error {
	tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh}
	if exp, ok := decodeExpiry(access); ok {
		tok.Expiry = exp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, other := s.ephemeral, s.durable
	if remember {
		target, other = s.durable, s.ephemeral
	}

	if err := other.Clear(); err != nil {
		s.logger.Warnf("failed to clear inactive session tier: %v", err)
	}
	return target.Write(tok)
}

// Update replaces the token pair in whichever tier currently holds it,
// defaulting to the ephemeral tier. Used after a refresh so persistence
// semantics are preserved. An empty refresh token keeps the old one.
func (s *Store) Update(access, refresh string) error {
	s.mu.Lock()
	cur := s.read()
	if refresh == "" {
		refresh = cur.RefreshToken()
	}

	tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh}
	if exp, ok := decodeExpiry(access); ok {
		tok.Expiry = exp
	}

	target := s.ephemeral
	if cur.Durable {
		target = s.durable
	}
	err := target.Write(tok)
	s.mu.Unlock()

	if err == nil {
		s.emit(EventRefreshed)
	}
	return err
}

// Clear destroys the token pair in both tiers and broadcasts a logout.
func (s *Store) Clear() {
	s.mu.Lock()
	if err := s.durable.Clear(); err != nil {
		s.logger.Warnf("failed to clear durable session: %v", err)
	}
	if err := s.ephemeral.Clear(); err != nil {
		s.logger.Warnf("failed to clear ephemeral session: %v", err)
	}
	s.mu.Unlock()

	s.emit(EventLogout)
}

// Expired reports whether the stored expiry has passed. A token without a
// decodable expiry is treated as non-expiring client-side; the server's
// 401 remains the source of truth. When the expiry has passed the pair is
// cleared and a logout broadcast.
func (s *Store) Expired() bool {
	s.mu.Lock()
	cur := s.read()
	if cur.Token == nil || cur.Token.Expiry.IsZero() || s.now().Before(cur.Token.Expiry) {
		s.mu.Unlock()
		return false
	}
	if err := s.durable.Clear(); err != nil {
		s.logger.Warnf("failed to clear durable session: %v", err)
	}
	if err := s.ephemeral.Clear(); err != nil {
		s.logger.Warnf("failed to clear ephemeral session: %v", err)
	}
	s.mu.Unlock()

	s.emit(EventLogout)
	return true
}

// Subscribe registers a listener for session events. The channel is
// buffered; events are dropped rather than blocking the store.
func (s *Store) Subscribe() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, 4)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) emit(ev Event) {
	s.mu.Lock()
	subs := make([]chan Event, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// decodeExpiry extracts the exp claim from a JWT access token without
// verifying the signature. Returns false for opaque or malformed tokens.
func decodeExpiry(access string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
