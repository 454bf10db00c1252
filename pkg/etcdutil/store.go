package etcdutil

import "github.com/coreos/go-etcd/etcd"

// Store is the part of *etcd.Client the job layout needs.
type Store interface {
	Get(key string, sort, recursive bool) (*etcd.Response, error)
	Set(key string, value string, ttl uint64) (*etcd.Response, error)
	Create(key string, value string, ttl uint64) (*etcd.Response, error)
	CreateDir(key string, ttl uint64) (*etcd.Response, error)
	Delete(key string, recursive bool) (*etcd.Response, error)
}

var _ Store = (*etcd.Client)(nil)
