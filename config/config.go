package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload/datasource"
	fs "github.com/taskgraph/harpload/filesystem"
)

// Fs can be "local", "hdfs" or "azure".
type IOConfig struct {
	Fs        string
	HdfsConf  HdfsConfig
	AzureConf AzureConfig
}

type HdfsConfig struct {
	NamenodeAddr string
	User         string
}

type AzureConfig struct {
	AccountName        string
	AccountKey         string
	BlobServiceBaseUrl string
	UseHttps           bool
}

// FileDim is the number of values on every input line. The first
// FeatureDim of them are features, the rest are dependent values.
type DataConfig struct {
	FeatureDim      int
	FileDim         int
	Separator       string
	RegexpSeparator bool
	ShardSize       int
	NumThreads      int
}

func (c DataConfig) NumLabels() int {
	return c.FileDim - c.FeatureDim
}

type RetryConfig struct {
	MaxAttempts      int
	Delay            time.Duration
	MaxDelay         time.Duration
	Backoff          string
	RetryParseErrors bool
}

type JobConfig struct {
	Name              string
	NumMappers        int
	NumClasses        int
	MaxIterations     int
	AccuracyThreshold float64
	Algorithm         string
	Params            map[string]float64
	InputPattern      string
	TestFilePath      string
	PruneFilePath     string
	OutputPath        string
	EtcdURLs          []string
}

type Config struct {
	IOConf    IOConfig
	DataConf  DataConfig
	RetryConf RetryConfig
	JobConf   JobConfig
}

func Parse(buf []byte) (*Config, error) {
	conf := &Config{}
	err := json.Unmarshal(buf, conf)
	return conf, err
}

func Dump(conf *Config) ([]byte, error) {
	return json.Marshal(conf)
}

func (c *Config) Validate() error {
	switch c.IOConf.Fs {
	case "local", "hdfs", "azure":
	default:
		return fmt.Errorf("config: unknown fs %q", c.IOConf.Fs)
	}
	d := c.DataConf
	if d.FeatureDim <= 0 {
		return fmt.Errorf("config: feature dim must be positive, got %d", d.FeatureDim)
	}
	if d.FileDim < d.FeatureDim {
		return fmt.Errorf("config: file dim %d is smaller than feature dim %d", d.FileDim, d.FeatureDim)
	}
	if d.ShardSize <= 0 {
		return fmt.Errorf("config: shard size must be positive, got %d", d.ShardSize)
	}
	if d.Separator == "" {
		return errors.New("config: empty separator")
	}
	if c.RetryConf.MaxAttempts < 1 {
		return fmt.Errorf("config: max attempts must be at least 1, got %d", c.RetryConf.MaxAttempts)
	}
	if _, err := datasource.ParseBackoff(c.RetryConf.Backoff); err != nil {
		return err
	}
	if c.JobConf.NumMappers <= 0 {
		return fmt.Errorf("config: num mappers must be positive, got %d", c.JobConf.NumMappers)
	}
	return nil
}

// Client builds the filesystem client named by Fs.
func (c IOConfig) Client() (fs.Client, error) {
	var client fs.Client
	var cltErr error
	switch c.Fs {
	case "local":
		client = fs.NewLocalFSClient()
	case "hdfs":
		client, cltErr = fs.NewHdfsClient(c.HdfsConf.NamenodeAddr, c.HdfsConf.User)
		if cltErr != nil {
			return nil, fmt.Errorf("Failed creating hdfs client %s", cltErr)
		}
	case "azure":
		client, cltErr = fs.NewAzureClient(
			c.AzureConf.AccountName,
			c.AzureConf.AccountKey,
			c.AzureConf.BlobServiceBaseUrl,
			c.AzureConf.UseHttps,
		)
		if cltErr != nil {
			return nil, fmt.Errorf("Failed creating azure client %s", cltErr)
		}
	default:
		return nil, fmt.Errorf("Unknow fs: %s", c.Fs)
	}
	return client, nil
}

func (c RetryConfig) RetryPolicy() (datasource.RetryPolicy, error) {
	b, err := datasource.ParseBackoff(c.Backoff)
	if err != nil {
		return datasource.RetryPolicy{}, err
	}
	return datasource.RetryPolicy{
		MaxAttempts:      c.MaxAttempts,
		Delay:            c.Delay,
		MaxDelay:         c.MaxDelay,
		Backoff:          b,
		RetryParseErrors: c.RetryParseErrors,
	}, nil
}

// ReaderOptions turns the data and retry settings into reader options.
func (c *Config) ReaderOptions(logger logrus.FieldLogger) ([]datasource.Option, error) {
	policy, err := c.RetryConf.RetryPolicy()
	if err != nil {
		return nil, err
	}
	opts := []datasource.Option{
		datasource.WithRetryPolicy(policy),
		datasource.WithShardSize(c.DataConf.ShardSize),
		datasource.WithLogger(logger),
	}
	if c.DataConf.RegexpSeparator {
		opts = append(opts, datasource.WithRegexpSeparator())
	}
	return opts, nil
}
