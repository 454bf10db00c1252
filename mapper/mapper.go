// Package mapper runs the data loading side of one task of a job.
package mapper

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload"
	"github.com/taskgraph/harpload/config"
	"github.com/taskgraph/harpload/datasource"
	fs "github.com/taskgraph/harpload/filesystem"
	"github.com/taskgraph/harpload/pkg/etcdutil"
	pb "github.com/taskgraph/harpload/shardpb"
	"github.com/taskgraph/harpload/shardserver"
	"golang.org/x/net/context"
)

// Number of observations printed after prediction.
const printRows = 20

type CollectiveMapper struct {
	job    string
	taskID uint64
	store  etcdutil.Store
	client fs.Client
	server *shardserver.Server
	out    io.Writer
	logger logrus.FieldLogger

	conf       *config.Config
	alg        harpload.Algorithm
	numThreads int
	ds         *datasource.DataSource
	inputFiles []string
}

func New(job string, taskID uint64, store etcdutil.Store, client fs.Client, logger logrus.FieldLogger) *CollectiveMapper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CollectiveMapper{
		job:    job,
		taskID: taskID,
		store:  store,
		client: client,
		out:    os.Stdout,
		logger: logger.WithFields(logrus.Fields{"job": job, "task": taskID}),
	}
}

// AttachServer makes the mapper publish what it loaded through s.
func (m *CollectiveMapper) AttachServer(s *shardserver.Server) {
	m.server = s
}

// SetOutput redirects the classification report, stdout by default.
func (m *CollectiveMapper) SetOutput(w io.Writer) {
	m.out = w
}

// ShardName is the name the task's training shards are published under.
func ShardName(taskID uint64) string {
	return fmt.Sprintf("task-%d", taskID)
}

// Mapper configuration.
func (m *CollectiveMapper) Setup(conf *config.Config) error {
	startTime := time.Now()
	if err := conf.Validate(); err != nil {
		return err
	}
	if name := conf.JobConf.Algorithm; name != "" {
		alg, err := harpload.Lookup(name)
		if err != nil {
			return err
		}
		m.alg = alg
	}
	m.conf = conf
	m.numThreads = conf.DataConf.NumThreads
	if m.numThreads <= 0 {
		m.numThreads = runtime.NumCPU()
	}
	opts, err := conf.ReaderOptions(m.logger)
	if err != nil {
		return err
	}
	m.ds = datasource.NewDataSource(m.client, m.numThreads, opts...)

	m.logger.WithFields(logrus.Fields{
		"featureDim":        conf.DataConf.FeatureDim,
		"fileDim":           conf.DataConf.FileDim,
		"numMappers":        conf.JobConf.NumMappers,
		"numThreads":        m.numThreads,
		"numClasses":        conf.JobConf.NumClasses,
		"maxIterations":     conf.JobConf.MaxIterations,
		"accuracyThreshold": conf.JobConf.AccuracyThreshold,
		"testFile":          conf.JobConf.TestFilePath,
		"pruneFile":         conf.JobConf.PruneFilePath,
	}).Info("mapper configured")
	m.logger.Infof("config (ms) :%d", time.Since(startTime).Milliseconds())
	return nil
}

// MapCollective runs the task and records the outcome in its etcd status.
func (m *CollectiveMapper) MapCollective(ctx context.Context) error {
	if m.conf == nil {
		return fmt.Errorf("mapper: task %d is not set up", m.taskID)
	}
	startTime := time.Now()
	if err := etcdutil.SetTaskStatus(m.store, m.job, m.taskID, etcdutil.StatusRunning); err != nil {
		return err
	}
	if err := m.run(ctx); err != nil {
		m.logger.WithError(err).Error("task failed")
		if serr := etcdutil.SetTaskFailed(m.store, m.job, m.taskID, err); serr != nil {
			m.logger.WithError(serr).Warn("cannot record task failure")
		}
		return err
	}
	m.logger.Infof("Total execution time (ms) :%d", time.Since(startTime).Milliseconds())
	return etcdutil.SetTaskStatus(m.store, m.job, m.taskID, etcdutil.StatusDone)
}

func (m *CollectiveMapper) run(ctx context.Context) error {
	files, err := etcdutil.GetTaskFiles(m.store, m.job, m.taskID)
	if err != nil {
		return err
	}
	for i, f := range files {
		m.logger.Infof("Key: %d, Value: %s", i, f)
	}
	if m.inputFiles, err = m.ds.ExpandPaths(files); err != nil {
		return err
	}

	d := m.conf.DataConf
	lists, err := m.ds.LoadShards(ctx, m.inputFiles, d.FileDim, d.Separator)
	if err != nil {
		return err
	}
	var shards datasource.ShardList
	for _, l := range lists {
		shards = append(shards, l...)
	}
	table, err := datasource.TableFromShards(d.FileDim, shards)
	if err != nil {
		return err
	}
	m.logger.WithFields(logrus.Fields{"rows": table.Rows, "shards": len(shards)}).Info("training data loaded")

	if err := m.publish(shards); err != nil {
		return err
	}
	if m.alg == nil {
		return nil
	}
	return m.train(ctx, table)
}

func (m *CollectiveMapper) publish(shards datasource.ShardList) error {
	d := m.conf.DataConf
	if out := m.conf.JobConf.OutputPath; out != "" {
		name := path.Join(out, ShardName(m.taskID)+".pb")
		if err := pb.SaveShardSet(m.client, pb.ToShardSet(name, d.FileDim, shards), name); err != nil {
			return fmt.Errorf("mapper: save %s: %v", name, err)
		}
		m.logger.WithField("path", name).Info("shards saved")
	}
	if m.server != nil {
		m.server.Put(ShardName(m.taskID), d.FileDim, shards)
	}
	return nil
}

func (m *CollectiveMapper) train(ctx context.Context, table *datasource.Table) error {
	alg := m.alg
	d := m.conf.DataConf
	in := &harpload.TrainingInput{
		NumClasses: m.conf.JobConf.NumClasses,
		Params:     m.conf.JobConf.Params,
	}
	var err error
	if in.Data, in.Labels, err = table.Split(d.FeatureDim, d.NumLabels()); err != nil {
		return err
	}
	if p := m.conf.JobConf.PruneFilePath; p != "" {
		if in.PruneData, in.PruneLabels, err = m.loadSplit(ctx, p); err != nil {
			return err
		}
	}

	startTime := time.Now()
	model, err := alg.Train(ctx, in)
	if err != nil {
		return fmt.Errorf("mapper: train %s: %w", alg.Name(), err)
	}
	m.logger.Infof("Training time (ms) :%d", time.Since(startTime).Milliseconds())

	testPath := m.conf.JobConf.TestFilePath
	if testPath == "" {
		return nil
	}
	testData, testTruth, err := m.loadSplit(ctx, testPath)
	if err != nil {
		return err
	}
	pred, err := model.Predict(ctx, testData)
	if err != nil {
		return fmt.Errorf("mapper: predict %s: %w", alg.Name(), err)
	}
	return PrintClassificationResult(m.out, testTruth, pred, "Ground truth", "Classification results",
		fmt.Sprintf("%s classification results (first %d observations):", alg.Name(), printRows), printRows)
}

func (m *CollectiveMapper) loadSplit(ctx context.Context, pattern string) (*datasource.Table, *datasource.Table, error) {
	files, err := m.ds.ExpandPaths([]string{pattern})
	if err != nil {
		return nil, nil, err
	}
	d := m.conf.DataConf
	return m.ds.LoadDenseTableSplit(ctx, files, d.FeatureDim, d.NumLabels(), d.Separator)
}
