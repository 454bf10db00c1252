package etcdutil

import (
	"errors"
	"time"
)

// heartbeat to etcd cluster until stop
func Heartbeat(client Store, name string, taskID uint64, interval time.Duration, stop chan struct{}) error {
	for {
		_, err := client.Set(TaskHealthyPath(name, taskID), "health", computeTTL(interval))
		if err != nil {
			return err
		}
		select {
		case <-time.After(interval):
		case <-stop:
			return nil
		}
	}
}

func computeTTL(interval time.Duration) uint64 {
	if interval/time.Second < 1 {
		return 3
	}
	return 3 * uint64(interval/time.Second)
}

// IsHealthy reports whether the task's heartbeat key is still alive.
func IsHealthy(client Store, name string, taskID uint64) (bool, error) {
	_, err := client.Get(TaskHealthyPath(name, taskID), false, false)
	if err != nil {
		if IsKeyNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var ErrHeartbeatLost = errors.New("heartbeat lost")

// report failure to etcd cluster
// The task's status becomes "failed: heartbeat lost".
func ReportFailure(client Store, name string, taskID uint64) error {
	return SetTaskFailed(client, name, taskID, ErrHeartbeatLost)
}
