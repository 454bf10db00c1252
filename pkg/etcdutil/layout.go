package etcdutil

import (
	"path"
	"strconv"
)

// The directory layout we going to define in etcd:
//   /{job}/config -> job configuration (JSON)
//   /{job}/status -> job status
//   /{job}/tasks/: register tasks under this directory
//   /{job}/tasks/{taskID}/files -> input paths of the task, one per line
//   /{job}/tasks/{taskID}/status -> pending | running | done | failed: {msg}
//   /{job}/tasks/{taskID}/node -> pointer to the node running the task
//   /{job}/nodes/{nodeID}/address -> host:port of the node's shard server
//   /{job}/healthy/{taskID} -> tasks' healthy condition, kept alive by ttl

const (
	TasksDir   = "tasks"
	NodesDir   = "nodes"
	ConfigDir  = "config"
	Status     = "status"
	TaskFiles  = "files"
	TaskStatus = "status"
	TaskNode   = "node"
	NodeAddr   = "address"
	Healthy    = "healthy"
)

func JobPath(appName string) string {
	return path.Join("/", appName)
}

func ConfigPath(appName string) string {
	return path.Join("/", appName, ConfigDir)
}

func JobStatusPath(appName string) string {
	return path.Join("/", appName, Status)
}

func TaskDirPath(appName string) string {
	return path.Join("/", appName, TasksDir)
}

func TaskPath(appName string, taskID uint64) string {
	return path.Join(TaskDirPath(appName), strconv.FormatUint(taskID, 10))
}

func TaskFilesPath(appName string, taskID uint64) string {
	return path.Join(TaskPath(appName, taskID), TaskFiles)
}

func TaskStatusPath(appName string, taskID uint64) string {
	return path.Join(TaskPath(appName, taskID), TaskStatus)
}

func TaskNodePath(appName string, taskID uint64) string {
	return path.Join(TaskPath(appName, taskID), TaskNode)
}

func NodeAddressPath(appName, nodeID string) string {
	return path.Join("/", appName, NodesDir, nodeID, NodeAddr)
}

func HealthyPath(appName string) string {
	return path.Join("/", appName, Healthy)
}

func TaskHealthyPath(appName string, taskID uint64) string {
	return path.Join(HealthyPath(appName), strconv.FormatUint(taskID, 10))
}
