package main

import (
	"github.com/spf13/pflag"
	"github.com/taskgraph/harpload/datasource"
)

// addJobFlags registers the flags config.Load binds into the job config.
// Their defaults only show up in help, viper keeps its own.
func addJobFlags(f *pflag.FlagSet) {
	f.String("fs", "local", "Filesystem of the input: local, hdfs or azure.")
	f.String("namenode", "", "HDFS namenode address.")
	f.String("hdfs_user", "", "HDFS user.")
	f.Int("feature_dim", 0, "Number of feature values on each line.")
	f.Int("file_dim", 0, "Number of values on each line, features plus dependent values.")
	f.String("sep", ",", "Value separator.")
	f.Int("shard_size", datasource.DefaultShardSize, "Rows per shard.")
	f.Int("threads", 0, "Files loaded in parallel, 0 for one per CPU.")
	f.Int("max_attempts", datasource.DefaultMaxAttempts, "Attempts per file before giving up.")
	f.Duration("retry_delay", datasource.DefaultRetryDelay, "Wait between attempts.")
	f.String("backoff", "fixed", "Retry backoff: fixed or exponential.")
	f.String("job", "harpload", "Job name.")
	f.Int("num_tasks", 1, "Num of task nodes.")
	f.Int("num_classes", 2, "Num of classes.")
	f.String("algorithm", "", "Registered algorithm to train, empty to only load.")
	f.String("input", "", "Input file or glob pattern.")
	f.String("test_file", "", "Test file or glob pattern.")
	f.String("prune_file", "", "Prune file or glob pattern.")
	f.String("output", "", "Directory the loaded shards are saved to.")
	f.StringSlice("etcd_urls", []string{"http://127.0.0.1:2379"}, "List of etcd instances.")
}
