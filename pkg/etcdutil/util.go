package etcdutil

import (
	"strings"

	"github.com/coreos/go-etcd/etcd"
)

const (
	ErrCodeKeyNotFound = 100
	ErrCodeNodeExist   = 105
)

func errorCode(err error) int {
	if e, ok := err.(*etcd.EtcdError); ok {
		return e.ErrorCode
	}
	return 0
}

func IsKeyNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errorCode(err) == ErrCodeKeyNotFound || strings.Contains(err.Error(), "Key not found")
}

func IsNodeExist(err error) bool {
	if err == nil {
		return false
	}
	return errorCode(err) == ErrCodeNodeExist || strings.Contains(err.Error(), "Key already exists")
}

func ListKeys(nodes []*etcd.Node) []string {
	res := make([]string, len(nodes))
	for i, n := range nodes {
		res[i] = n.Key
	}
	return res
}
