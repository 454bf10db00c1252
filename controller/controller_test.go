package controller

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload/config"
	fs "github.com/taskgraph/harpload/filesystem"
	"github.com/taskgraph/harpload/pkg/etcdutil"
	"github.com/taskgraph/harpload/pkg/etcdutil/etcdtest"
	"golang.org/x/net/context"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func testConfig(name string) *config.Config {
	return &config.Config{
		IOConf:   config.IOConfig{Fs: "local"},
		DataConf: config.DataConfig{FeatureDim: 2, FileDim: 3, Separator: ",", ShardSize: 4},
		JobConf:  config.JobConfig{Name: name, NumMappers: 2},
	}
}

func TestControllerInitEtcdLayout(t *testing.T) {
	tests := []struct {
		name          string
		numberOfTasks uint64
		files         []string
		want          [][]string
	}{
		{"test-1", 2, []string{"a", "b", "c"}, [][]string{{"a", "c"}, {"b"}}},
		{"test-2", 4, []string{"a", "b"}, [][]string{{"a"}, {"b"}, nil, nil}},
	}

	store := etcdtest.NewStore()
	for i, tt := range tests {
		c := New(tt.name, store, tt.numberOfTasks, quietLogger())
		if err := c.InitEtcdLayout(testConfig(tt.name), tt.files); err != nil {
			t.Fatalf("#%d: InitEtcdLayout failed: %v", i, err)
		}

		buf, err := etcdutil.GetConfig(store, tt.name)
		if err != nil {
			t.Fatalf("#%d: GetConfig failed: %v", i, err)
		}
		conf, err := config.Parse(buf)
		if err != nil || conf.JobConf.Name != tt.name {
			t.Errorf("#%d: published config = %+v, %v", i, conf, err)
		}
		for taskID := uint64(0); taskID < tt.numberOfTasks; taskID++ {
			files, err := etcdutil.GetTaskFiles(store, tt.name, taskID)
			if err != nil {
				t.Fatalf("#%d: GetTaskFiles failed: %v", i, err)
			}
			if !reflect.DeepEqual(files, tt.want[taskID]) {
				t.Errorf("#%d: task %d files = %v, want %v", i, taskID, files, tt.want[taskID])
			}
			if s, _ := etcdutil.GetTaskStatus(store, tt.name, taskID); s != etcdutil.StatusPending {
				t.Errorf("#%d: task %d status = %q, want pending", i, taskID, s)
			}
		}

		if err := c.DestroyEtcdLayout(); err != nil {
			t.Errorf("#%d: DestroyEtcdLayout failed: %v", i, err)
		}
		if _, err := etcdutil.GetConfig(store, tt.name); !etcdutil.IsKeyNotFound(err) {
			t.Errorf("#%d: config survived DestroyEtcdLayout: %v", i, err)
		}
	}
}

func TestInitEtcdLayoutTwice(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("dup", store, 1, quietLogger())
	if err := c.Start(testConfig("dup"), nil); err != nil {
		t.Fatal(err)
	}
	if err := c.InitEtcdLayout(testConfig("dup"), nil); !etcdutil.IsNodeExist(err) {
		t.Errorf("second InitEtcdLayout err = %v, want node exist", err)
	}
}

func TestWaitForJobDone(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("wait", store, 2, quietLogger())
	if err := c.InitEtcdLayout(testConfig("wait"), []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		etcdutil.SetTaskStatus(store, "wait", 0, etcdutil.StatusDone)
		etcdutil.SetTaskStatus(store, "wait", 1, etcdutil.StatusDone)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.WaitForJobDone(ctx, 5*time.Millisecond); err != nil {
		t.Fatalf("WaitForJobDone failed: %v", err)
	}
	if v, _ := store.Value(etcdutil.JobStatusPath("wait")); v != etcdutil.StatusDone {
		t.Errorf("job status = %q, want done", v)
	}
}

func TestWaitForJobDoneTaskFailed(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("fail", store, 2, quietLogger())
	if err := c.InitEtcdLayout(testConfig("fail"), []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	etcdutil.SetTaskStatus(store, "fail", 0, etcdutil.StatusDone)
	etcdutil.SetTaskStatus(store, "fail", 1, "failed: bad row")
	err := c.WaitForJobDone(context.Background(), time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "bad row") {
		t.Fatalf("WaitForJobDone err = %v, want task failure", err)
	}
	if v, _ := store.Value(etcdutil.JobStatusPath("fail")); v != etcdutil.StatusFailed {
		t.Errorf("job status = %q, want failed", v)
	}
}

func TestWaitForJobDoneCancelled(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("cancel", store, 1, quietLogger())
	if err := c.InitEtcdLayout(testConfig("cancel"), nil); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.WaitForJobDone(ctx, time.Hour); err != context.Canceled {
		t.Errorf("WaitForJobDone err = %v, want context.Canceled", err)
	}
}

func TestDiscoverInputs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("1,2,3\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := DiscoverInputs(fs.NewLocalFSClient(), filepath.Join(dir, "*.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("DiscoverInputs = %v, want %v", files, want)
	}
	if _, err := DiscoverInputs(fs.NewLocalFSClient(), filepath.Join(dir, "*.parquet")); err == nil {
		t.Errorf("DiscoverInputs with no match succeeded")
	}
}

func TestWaitForJobDoneHeartbeatLost(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("lost", store, 1, quietLogger())
	c.SetHeartbeatGrace(30 * time.Millisecond)
	if err := c.InitEtcdLayout(testConfig("lost"), []string{"a"}); err != nil {
		t.Fatal(err)
	}
	etcdutil.SetTaskStatus(store, "lost", 0, etcdutil.StatusRunning)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.WaitForJobDone(ctx, 5*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), etcdutil.ErrHeartbeatLost.Error()) {
		t.Fatalf("WaitForJobDone err = %v, want heartbeat lost", err)
	}
	if s, _ := etcdutil.GetTaskStatus(store, "lost", 0); s != "failed: heartbeat lost" {
		t.Errorf("task status = %q, want failed: heartbeat lost", s)
	}
	if v, _ := store.Value(etcdutil.JobStatusPath("lost")); v != etcdutil.StatusFailed {
		t.Errorf("job status = %q, want failed", v)
	}
}

func TestWaitForJobDoneHeartbeatExpires(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("expire", store, 2, quietLogger())
	c.SetHeartbeatGrace(20 * time.Millisecond)
	if err := c.InitEtcdLayout(testConfig("expire"), []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	etcdutil.SetTaskStatus(store, "expire", 0, etcdutil.StatusDone)
	etcdutil.SetTaskStatus(store, "expire", 1, etcdutil.StatusRunning)
	store.Set(etcdutil.TaskHealthyPath("expire", 1), "health", 3)
	go func() {
		time.Sleep(50 * time.Millisecond)
		store.Expire(etcdutil.TaskHealthyPath("expire", 1))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	err := c.WaitForJobDone(ctx, 5*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "task 1") {
		t.Fatalf("WaitForJobDone err = %v, want task 1 failure", err)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Errorf("task failed after %v while its heartbeat was alive", time.Since(start))
	}
}

func TestWaitForJobDoneHealthyRunningTask(t *testing.T) {
	store := etcdtest.NewStore()
	c := New("healthy", store, 1, quietLogger())
	c.SetHeartbeatGrace(10 * time.Millisecond)
	if err := c.InitEtcdLayout(testConfig("healthy"), []string{"a"}); err != nil {
		t.Fatal(err)
	}
	etcdutil.SetTaskStatus(store, "healthy", 0, etcdutil.StatusRunning)
	store.Set(etcdutil.TaskHealthyPath("healthy", 0), "health", 3)
	stop := make(chan struct{})
	defer close(stop)
	go etcdutil.Heartbeat(store, "healthy", 0, 10*time.Millisecond, stop)
	go func() {
		time.Sleep(60 * time.Millisecond)
		etcdutil.SetTaskStatus(store, "healthy", 0, etcdutil.StatusDone)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.WaitForJobDone(ctx, 5*time.Millisecond); err != nil {
		t.Fatalf("WaitForJobDone failed: %v", err)
	}
}
