package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"bizmarket/models"
	"bizmarket/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// testClock is a settable clock shared by the services of one test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	To, Subject, Body string
}

// recordingNotifier remembers every message; addresses in fail are refused.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[to] {
		return errors.New("relay refused recipient")
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

// fixture wires every service to one memory store and one clock.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.MemoryStore
	clock *testClock
	mail  *recordingNotifier

	listings      *ListingService
	leads         *LeadService
	assignment    *AssignmentService
	subscriptions *SubscriptionService
	sweeper       *ExpirySweeper
	admin         *AdminService
}

func newFixture(t *testing.T) *fixture {
	st := store.NewMemoryStore()
	clock := newTestClock()
	mail := &recordingNotifier{fail: map[string]bool{}}
	log := quietLog()

	f := &fixture{
		t:             t,
		ctx:           context.Background(),
		store:         st,
		clock:         clock,
		mail:          mail,
		listings:      NewListingService(st, log),
		leads:         NewLeadService(st, DefaultLeadCooldown, log),
		assignment:    NewAssignmentService(st, log),
		subscriptions: NewSubscriptionService(st, decimal.NewFromInt(1500), "AED", log),
		sweeper:       NewExpirySweeper(st, mail, 2, time.Second, log),
		admin:         NewAdminService(st, decimal.NewFromInt(499), log),
	}
	f.listings.now = clock.Now
	f.leads.now = clock.Now
	f.assignment.now = clock.Now
	f.subscriptions.now = clock.Now
	f.sweeper.now = clock.Now
	return f
}

func (f *fixture) user(role models.Role, email string) *models.Actor {
	u := &models.User{
		Name:          string(role) + " " + email,
		Email:         email,
		PasswordHash:  "x",
		Role:          role,
		AccountStatus: models.AccountActive,
	}
	require.NoError(f.t, f.store.CreateUser(f.ctx, u))
	return models.ActorOf(u)
}

func (f *fixture) listing(seller *models.Actor, title string) *models.Listing {
	price := decimal.NewFromInt(100000)
	l, err := f.listings.Create(f.ctx, seller, CreateListingInput{
		Title:             title,
		Industry:          "Retail",
		Region:            "Dubai",
		Price:             &price,
		LegalBusinessName: title + " LLC",
		FullAddress:       "1 Sheikh Zayed Rd",
		OwnerName:         "Owner",
	})
	require.NoError(f.t, err)
	return l
}

func (f *fixture) reload(id uint) *models.Listing {
	l, err := f.store.FindListing(f.ctx, id)
	require.NoError(f.t, err)
	return l
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
