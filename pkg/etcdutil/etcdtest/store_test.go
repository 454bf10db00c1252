package etcdtest

import (
	"testing"
	"time"

	"github.com/taskgraph/harpload/pkg/etcdutil"
)

func TestStoreDirAndDelete(t *testing.T) {
	s := NewStore()
	var _ etcdutil.Store = s
	s.Set("/job/tasks/0/status", "pending", 0)
	s.Set("/job/tasks/1/status", "pending", 0)
	s.Set("/other", "x", 0)

	resp, err := s.Get("/job/tasks", false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Node.Dir || len(resp.Node.Nodes) != 2 {
		t.Fatalf("Get dir = %+v, want 2 children", resp.Node)
	}
	if keys := etcdutil.ListKeys(resp.Node.Nodes); keys[0] != "/job/tasks/0" || keys[1] != "/job/tasks/1" {
		t.Errorf("children = %v", keys)
	}
	if _, err := s.Create("/other", "y", 0); !etcdutil.IsNodeExist(err) {
		t.Errorf("Create existing err = %v, want node exist", err)
	}
	if _, err := s.Delete("/job", true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("/job/tasks/0/status", false, false); !etcdutil.IsKeyNotFound(err) {
		t.Errorf("Get after delete err = %v, want key not found", err)
	}
	if v, ok := s.Value("/other"); !ok || v != "x" {
		t.Errorf("unrelated key = %q, %v", v, ok)
	}
}

func TestStoreTTL(t *testing.T) {
	s := NewStore()
	s.Set("/job/healthy/0", "health", 1)
	s.Set("/job/healthy/1", "health", 30)

	resp, err := s.Get("/job/healthy/1", false, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Node.TTL != 30 {
		t.Errorf("ttl = %d, want 30", resp.Node.TTL)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, err := s.Get("/job/healthy/0", false, false); !etcdutil.IsKeyNotFound(err) {
		t.Errorf("Get after ttl err = %v, want key not found", err)
	}
	s.Expire("/job/healthy/1")
	if _, ok := s.Value("/job/healthy/1"); ok {
		t.Errorf("expired key still present")
	}

	// a plain Set clears an earlier ttl
	s.Set("/job/status", "running", 1)
	s.Set("/job/status", "done", 0)
	resp, err = s.Get("/job/status", false, false)
	if err != nil || resp.Node.TTL != 0 {
		t.Errorf("Get = %+v, %v, want key without ttl", resp, err)
	}
}
