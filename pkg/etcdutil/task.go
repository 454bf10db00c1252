package etcdutil

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// PutTaskFiles stores the input paths assigned to a task.
func PutTaskFiles(client Store, name string, taskID uint64, files []string) error {
	_, err := client.Set(TaskFilesPath(name, taskID), strings.Join(files, "\n"), 0)
	return err
}

// GetTaskFiles reads back the input paths assigned to a task. A task with
// no assignment gets an empty list.
func GetTaskFiles(client Store, name string, taskID uint64) ([]string, error) {
	resp, err := client.Get(TaskFilesPath(name, taskID), false, false)
	if err != nil {
		if IsKeyNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, f := range strings.Split(resp.Node.Value, "\n") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

func SetTaskStatus(client Store, name string, taskID uint64, status string) error {
	_, err := client.Set(TaskStatusPath(name, taskID), status, 0)
	return err
}

// SetTaskFailed records the failure message along with the status.
func SetTaskFailed(client Store, name string, taskID uint64, cause error) error {
	return SetTaskStatus(client, name, taskID, fmt.Sprintf("%s: %v", StatusFailed, cause))
}

func GetTaskStatus(client Store, name string, taskID uint64) (string, error) {
	resp, err := client.Get(TaskStatusPath(name, taskID), false, false)
	if err != nil {
		return "", err
	}
	return resp.Node.Value, nil
}

func IsFailedStatus(status string) bool {
	return strings.HasPrefix(status, StatusFailed)
}

// RegisterNode records a fresh node ID for the task and the address the
// node serves shards on.
func RegisterNode(client Store, name string, taskID uint64, addr string) (string, error) {
	nodeID := uuid.New().String()
	if _, err := client.Set(NodeAddressPath(name, nodeID), addr, 0); err != nil {
		return "", err
	}
	if _, err := client.Set(TaskNodePath(name, taskID), nodeID, 0); err != nil {
		return "", err
	}
	return nodeID, nil
}

// GetTaskAddress will return the host:port address of the node taking care of
// the task that we want to talk to.
// Currently we grab the information from etcd every time.
func GetTaskAddress(client Store, name string, taskID uint64) (string, error) {
	resp, err := client.Get(TaskNodePath(name, taskID), false, false)
	if err != nil {
		return "", err
	}
	resp, err = client.Get(NodeAddressPath(name, resp.Node.Value), false, false)
	if err != nil {
		return "", err
	}
	return resp.Node.Value, nil
}

func PutConfig(client Store, name string, conf []byte) error {
	_, err := client.Set(ConfigPath(name), string(conf), 0)
	return err
}

func GetConfig(client Store, name string) ([]byte, error) {
	resp, err := client.Get(ConfigPath(name), false, false)
	if err != nil {
		return nil, err
	}
	return []byte(resp.Node.Value), nil
}

func SetJobStatus(client Store, name string, status string) error {
	_, err := client.Set(JobStatusPath(name), status, 0)
	return err
}
