package controller

import (
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload/config"
	"github.com/taskgraph/harpload/datasource"
	fs "github.com/taskgraph/harpload/filesystem"
	"github.com/taskgraph/harpload/pkg/etcdutil"
	"golang.org/x/net/context"
)

// This is the controller of a job.
// A job needs controller to setup etcd data layout, hand out the input
// files to tasks and watch the tasks until the job is done.
type Controller struct {
	name       string
	store      etcdutil.Store
	numOfTasks uint64
	logger     logrus.FieldLogger

	// A running task whose heartbeat stays missing this long is failed.
	heartbeatGrace time.Duration
	lostSince      map[uint64]time.Time
}

const DefaultHeartbeatGrace = 10 * time.Second

func New(name string, store etcdutil.Store, numOfTasks uint64, logger logrus.FieldLogger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		name:       name,
		store:      store,
		numOfTasks: numOfTasks,
		logger:     logger.WithField("job", name),

		heartbeatGrace: DefaultHeartbeatGrace,
		lostSince:      make(map[uint64]time.Time),
	}
}

// SetHeartbeatGrace changes how long a running task may go without a
// heartbeat before it is reported failed.
func (c *Controller) SetHeartbeatGrace(d time.Duration) {
	c.heartbeatGrace = d
}

// A controller typical workflow:
// 1. controller sets up etcd layout before any task starts running.
// 2. Being ready, controller waits for the tasks and reports any failure found.
func (c *Controller) Start(conf *config.Config, files []string) error {
	if err := c.InitEtcdLayout(conf, files); err != nil {
		return err
	}
	c.logger.Infof("Controller starting, name: %s, numberOfTask: %d, files: %d", c.name, c.numOfTasks, len(files))
	return nil
}

func (c *Controller) Stop() error {
	c.logger.Info("Controller stoping...")
	return c.DestroyEtcdLayout()
}

// InitEtcdLayout publishes the job config and assigns files to tasks
// round robin: file i goes to task i mod numOfTasks.
func (c *Controller) InitEtcdLayout(conf *config.Config, files []string) error {
	if c.numOfTasks == 0 {
		return fmt.Errorf("controller: job %s has no tasks", c.name)
	}
	buf, err := config.Dump(conf)
	if err != nil {
		return err
	}
	// Create fails if a job with the same name is still around.
	if _, err := c.store.Create(etcdutil.ConfigPath(c.name), string(buf), 0); err != nil {
		return err
	}
	if _, err := c.store.CreateDir(etcdutil.HealthyPath(c.name), 0); err != nil && !etcdutil.IsNodeExist(err) {
		return err
	}

	assigned := make([][]string, c.numOfTasks)
	for i, f := range files {
		t := uint64(i) % c.numOfTasks
		assigned[t] = append(assigned[t], f)
	}
	for i := uint64(0); i < c.numOfTasks; i++ {
		if err := etcdutil.PutTaskFiles(c.store, c.name, i, assigned[i]); err != nil {
			return err
		}
		if err := etcdutil.SetTaskStatus(c.store, c.name, i, etcdutil.StatusPending); err != nil {
			return err
		}
		c.logger.WithFields(logrus.Fields{"task": i, "files": len(assigned[i])}).Debug("task assigned")
	}
	return etcdutil.SetJobStatus(c.store, c.name, etcdutil.StatusRunning)
}

func (c *Controller) DestroyEtcdLayout() error {
	_, err := c.store.Delete(etcdutil.JobPath(c.name), true)
	return err
}

// DiscoverInputs expands the input pattern into the sorted list of files.
func DiscoverInputs(client fs.Client, pattern string) ([]string, error) {
	return datasource.NewDataSource(client, 1).ExpandPaths([]string{pattern})
}

// WaitForJobDone polls the task statuses every interval. It returns nil
// once every task is done and an error as soon as one task failed.
func (c *Controller) WaitForJobDone(ctx context.Context, interval time.Duration) error {
	for {
		done, err := c.checkTasks()
		if err != nil {
			if serr := etcdutil.SetJobStatus(c.store, c.name, etcdutil.StatusFailed); serr != nil {
				c.logger.WithError(serr).Warn("cannot record job failure")
			}
			return err
		}
		if done {
			c.logger.Info("Job done")
			return etcdutil.SetJobStatus(c.store, c.name, etcdutil.StatusDone)
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// taskIDs lists the tasks registered under the job's task dir.
func (c *Controller) taskIDs() ([]uint64, error) {
	resp, err := c.store.Get(etcdutil.TaskDirPath(c.name), true, false)
	if err != nil {
		return nil, err
	}
	keys := etcdutil.ListKeys(resp.Node.Nodes)
	ids := make([]uint64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseUint(path.Base(k), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("controller: bad task key %s", k)
		}
		ids = append(ids, id)
	}
	if uint64(len(ids)) != c.numOfTasks {
		return nil, fmt.Errorf("controller: job %s has %d tasks in etcd, want %d", c.name, len(ids), c.numOfTasks)
	}
	return ids, nil
}

func (c *Controller) checkTasks() (bool, error) {
	ids, err := c.taskIDs()
	if err != nil {
		return false, err
	}
	done := true
	for _, i := range ids {
		status, err := etcdutil.GetTaskStatus(c.store, c.name, i)
		if err != nil {
			return false, err
		}
		switch {
		case etcdutil.IsFailedStatus(status):
			return false, fmt.Errorf("controller: task %d %s", i, status)
		case status == etcdutil.StatusDone:
		case status == etcdutil.StatusRunning:
			done = false
			if err := c.detectFailure(i); err != nil {
				return false, err
			}
		default:
			done = false
		}
	}
	return done, nil
}

// detectFailure fails a running task once its heartbeat has been missing
// for longer than the grace period.
func (c *Controller) detectFailure(taskID uint64) error {
	healthy, err := etcdutil.IsHealthy(c.store, c.name, taskID)
	if err != nil {
		return err
	}
	if healthy {
		delete(c.lostSince, taskID)
		return nil
	}
	since, ok := c.lostSince[taskID]
	if !ok {
		c.lostSince[taskID] = time.Now()
		c.logger.WithField("task", taskID).Warn("running task has no heartbeat")
		return nil
	}
	if time.Since(since) < c.heartbeatGrace {
		return nil
	}
	if err := etcdutil.ReportFailure(c.store, c.name, taskID); err != nil {
		return err
	}
	return fmt.Errorf("controller: task %d %s: %v", taskID, etcdutil.StatusFailed, etcdutil.ErrHeartbeatLost)
}
