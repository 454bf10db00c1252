// Package etcdtest provides an in-memory etcdutil.Store for tests.
package etcdtest

import (
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-etcd/etcd"
)

// Store keeps keys in memory. Keys set with a ttl expire like they do on
// an etcd server, measured in seconds of wall clock.
type Store struct {
	mu      sync.Mutex
	index   uint64
	kv      map[string]string
	ttl     map[string]int64
	expires map[string]time.Time
	dirs    map[string]bool
	// Sets counts Set calls per key.
	Sets map[string]int
}

func NewStore() *Store {
	return &Store{
		kv:      make(map[string]string),
		ttl:     make(map[string]int64),
		expires: make(map[string]time.Time),
		dirs:    make(map[string]bool),
		Sets:    make(map[string]int),
	}
}

func (s *Store) remove(key string) {
	delete(s.kv, key)
	delete(s.ttl, key)
	delete(s.expires, key)
}

// purge drops expired keys. Callers hold mu.
func (s *Store) purge() {
	now := time.Now()
	for k, at := range s.expires {
		if !now.Before(at) {
			s.remove(k)
			s.index++
		}
	}
}

// Expire drops key at once, as if its ttl had run out.
func (s *Store) Expire(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kv[key]; ok {
		s.remove(key)
		s.index++
	}
}

func notFound(key string, index uint64) error {
	return &etcd.EtcdError{ErrorCode: 100, Message: "Key not found", Cause: key, Index: index}
}

func (s *Store) isDir(key string) bool {
	if s.dirs[key] {
		return true
	}
	for k := range s.kv {
		if strings.HasPrefix(k, key+"/") {
			return true
		}
	}
	return false
}

func (s *Store) children(key string) etcd.Nodes {
	seen := make(map[string]bool)
	var nodes etcd.Nodes
	add := func(k string) {
		rest := strings.TrimPrefix(k, key+"/")
		child := path.Join(key, strings.SplitN(rest, "/", 2)[0])
		if seen[child] {
			return
		}
		seen[child] = true
		if v, ok := s.kv[child]; ok {
			nodes = append(nodes, &etcd.Node{Key: child, Value: v, TTL: s.ttl[child]})
		} else {
			nodes = append(nodes, &etcd.Node{Key: child, Dir: true})
		}
	}
	for k := range s.kv {
		if strings.HasPrefix(k, key+"/") {
			add(k)
		}
	}
	for k := range s.dirs {
		if strings.HasPrefix(k, key+"/") {
			add(k)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Key < nodes[j].Key })
	return nodes
}

func (s *Store) Get(key string, sort, recursive bool) (*etcd.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	if v, ok := s.kv[key]; ok {
		return &etcd.Response{Action: "get", Node: &etcd.Node{Key: key, Value: v, TTL: s.ttl[key]}, EtcdIndex: s.index}, nil
	}
	if s.isDir(key) {
		return &etcd.Response{Action: "get", Node: &etcd.Node{Key: key, Dir: true, Nodes: s.children(key)}, EtcdIndex: s.index}, nil
	}
	return nil, notFound(key, s.index)
}

func (s *Store) Set(key string, value string, ttl uint64) (*etcd.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(key, value, ttl)
	return &etcd.Response{Action: "set", Node: &etcd.Node{Key: key, Value: value, TTL: int64(ttl)}, EtcdIndex: s.index}, nil
}

func (s *Store) set(key, value string, ttl uint64) {
	s.index++
	s.kv[key] = value
	s.Sets[key]++
	if ttl > 0 {
		s.ttl[key] = int64(ttl)
		s.expires[key] = time.Now().Add(time.Duration(ttl) * time.Second)
	} else {
		delete(s.ttl, key)
		delete(s.expires, key)
	}
}

func (s *Store) Create(key string, value string, ttl uint64) (*etcd.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	if _, ok := s.kv[key]; ok || s.dirs[key] {
		return nil, &etcd.EtcdError{ErrorCode: 105, Message: "Key already exists", Cause: key, Index: s.index}
	}
	s.set(key, value, ttl)
	return &etcd.Response{Action: "create", Node: &etcd.Node{Key: key, Value: value, TTL: int64(ttl)}, EtcdIndex: s.index}, nil
}

func (s *Store) CreateDir(key string, ttl uint64) (*etcd.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	if s.isDir(key) {
		return nil, &etcd.EtcdError{ErrorCode: 105, Message: "Key already exists", Cause: key, Index: s.index}
	}
	s.index++
	s.dirs[key] = true
	return &etcd.Response{Action: "create", Node: &etcd.Node{Key: key, Dir: true}, EtcdIndex: s.index}, nil
}

func (s *Store) Delete(key string, recursive bool) (*etcd.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	found := false
	if _, ok := s.kv[key]; ok {
		s.remove(key)
		found = true
	}
	if recursive {
		prefix := strings.TrimSuffix(key, "/") + "/"
		for k := range s.kv {
			if strings.HasPrefix(k, prefix) {
				s.remove(k)
				found = true
			}
		}
		for k := range s.dirs {
			if k == key || strings.HasPrefix(k, prefix) {
				delete(s.dirs, k)
				found = true
			}
		}
	}
	if !found {
		return nil, notFound(key, s.index)
	}
	s.index++
	return &etcd.Response{Action: "delete", Node: &etcd.Node{Key: key}, EtcdIndex: s.index}, nil
}

// Value returns the raw value of key.
func (s *Store) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	v, ok := s.kv[key]
	return v, ok
}
