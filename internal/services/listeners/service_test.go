package listeners

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"astrobot/internal/transport"
	logx "astrobot/pkg/logx"
)

type memStore struct {
	mu        sync.Mutex
	listeners map[int64][]int64
}

func newMemStore() *memStore { return &memStore{listeners: map[int64][]int64{}} }

func (m *memStore) LoadSchedules(ctx context.Context) (map[int64]map[string]int64, error) {
	return nil, nil
}
func (m *memStore) SaveSchedules(ctx context.Context, guildID int64, jobs map[string]int64) error {
	return nil
}

func (m *memStore) LoadListeners(ctx context.Context) (map[int64][]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64][]int64{}
	for g, ids := range m.listeners {
		out[g] = append([]int64(nil), ids...)
	}
	return out, nil
}

func (m *memStore) SaveListeners(ctx context.Context, guildID int64, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[guildID] = append([]int64(nil), ids...)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) saved(guildID int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.listeners[guildID]...)
}

type stubUser struct {
	id   int64
	name string

	mu      sync.Mutex
	inbox   []string
	sendErr error
}

func (u *stubUser) ID() int64       { return u.id }
func (u *stubUser) IsUser() bool    { return true }
func (u *stubUser) Name() string    { return u.name }
func (u *stubUser) Mention() string { return "@" + u.name }

func (u *stubUser) Send(ctx context.Context, text string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.sendErr != nil {
		return u.sendErr
	}
	u.inbox = append(u.inbox, text)
	return nil
}

func (u *stubUser) received() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.inbox...)
}

type stubDirectory struct {
	users map[int64]*stubUser
}

func newStubDirectory(users ...*stubUser) *stubDirectory {
	d := &stubDirectory{users: map[int64]*stubUser{}}
	for _, u := range users {
		d.users[u.id] = u
	}
	return d
}

func (d *stubDirectory) ByID(ctx context.Context, id int64, user bool) (transport.Recipient, error) {
	if !user {
		return nil, errors.New("not a user lookup")
	}
	u, ok := d.users[id]
	if !ok {
		return nil, fmt.Errorf("no user %d", id)
	}
	return u, nil
}

func TestAddRemove(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	s := New(store, newStubDirectory(), logx.Nop())
	ctx := context.Background()

	if !s.Add(ctx, 9, 1) {
		t.Fatal("first add should succeed")
	}
	if s.Add(ctx, 9, 1) {
		t.Fatal("duplicate add should report false")
	}
	if !s.Add(ctx, 9, 2) {
		t.Fatal("second user add should succeed")
	}
	if !reflect.DeepEqual(store.saved(9), []int64{1, 2}) {
		t.Fatalf("persisted %v", store.saved(9))
	}

	if !s.Remove(ctx, 9, 1) {
		t.Fatal("remove should succeed")
	}
	if s.Remove(ctx, 9, 1) {
		t.Fatal("second remove should report false")
	}
	if !reflect.DeepEqual(store.saved(9), []int64{2}) {
		t.Fatalf("persisted %v", store.saved(9))
	}
}

func TestRestore(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	store.listeners[9] = []int64{7}

	s := New(store, newStubDirectory(), logx.Nop())
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.Add(context.Background(), 9, 7) {
		t.Fatal("restored listener should already be present")
	}
}

func TestListResolvesMentions(t *testing.T) {
	t.Parallel()
	alice := &stubUser{id: 1, name: "alice"}
	s := New(newMemStore(), newStubDirectory(alice), logx.Nop())
	ctx := context.Background()

	s.Add(ctx, 9, 1)
	s.Add(ctx, 9, 404)

	got := s.List(ctx, 9)
	want := []string{"@alice", "404"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestNotifyFanOut(t *testing.T) {
	t.Parallel()
	alice := &stubUser{id: 1, name: "alice"}
	bob := &stubUser{id: 2, name: "bob", sendErr: errors.New("blocked the bot")}
	carol := &stubUser{id: 3, name: "carol"}
	s := New(newMemStore(), newStubDirectory(alice, bob, carol), logx.Nop())
	ctx := context.Background()

	s.Add(ctx, 9, 1)
	s.Add(ctx, 9, 2)
	s.Add(ctx, 9, 3)
	s.Add(ctx, 9, 404) // no longer resolvable

	s.Notify(ctx, 9, "Failed to fetch Skywatch: couldn't find it")

	for _, u := range []*stubUser{alice, carol} {
		got := u.received()
		if len(got) != 1 || got[0] != "Failed to fetch Skywatch: couldn't find it" {
			t.Fatalf("%s received %v", u.name, got)
		}
	}
	if len(bob.received()) != 0 {
		t.Fatalf("bob should have received nothing, got %v", bob.received())
	}
}

func TestNotifyOtherGuildUntouched(t *testing.T) {
	t.Parallel()
	alice := &stubUser{id: 1, name: "alice"}
	s := New(newMemStore(), newStubDirectory(alice), logx.Nop())
	ctx := context.Background()

	s.Add(ctx, 9, 1)
	s.Notify(ctx, 10, "wrong guild")
	if len(alice.received()) != 0 {
		t.Fatalf("alice should have received nothing, got %v", alice.received())
	}
}
