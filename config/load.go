package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/taskgraph/harpload/datasource"
)

const EnvPrefix = "HARPLOAD"

var defaults = map[string]interface{}{
	"ioconf.fs":                           "local",
	"ioconf.hdfsconf.namenodeaddr":        "",
	"ioconf.hdfsconf.user":                "",
	"ioconf.azureconf.accountname":        "",
	"ioconf.azureconf.accountkey":         "",
	"ioconf.azureconf.blobservicebaseurl": "core.windows.net",
	"ioconf.azureconf.usehttps":           true,
	"dataconf.featuredim":                 0,
	"dataconf.filedim":                    0,
	"dataconf.separator":                  ",",
	"dataconf.regexpseparator":            false,
	"dataconf.shardsize":                  datasource.DefaultShardSize,
	"dataconf.numthreads":                 0,
	"retryconf.maxattempts":               datasource.DefaultMaxAttempts,
	"retryconf.delay":                     datasource.DefaultRetryDelay,
	"retryconf.maxdelay":                  datasource.DefaultMaxDelay,
	"retryconf.backoff":                   "fixed",
	"retryconf.retryparseerrors":          false,
	"jobconf.name":                        "harpload",
	"jobconf.nummappers":                  1,
	"jobconf.numclasses":                  2,
	"jobconf.maxiterations":               0,
	"jobconf.accuracythreshold":           0.0,
	"jobconf.algorithm":                   "",
	"jobconf.inputpattern":                "",
	"jobconf.testfilepath":                "",
	"jobconf.prunefilepath":               "",
	"jobconf.outputpath":                  "",
	"jobconf.etcdurls":                    []string{"http://127.0.0.1:2379"},
}

// FlagKeys maps command line flag names to config keys.
var FlagKeys = map[string]string{
	"fs":           "ioconf.fs",
	"namenode":     "ioconf.hdfsconf.namenodeaddr",
	"hdfs_user":    "ioconf.hdfsconf.user",
	"feature_dim":  "dataconf.featuredim",
	"file_dim":     "dataconf.filedim",
	"sep":          "dataconf.separator",
	"shard_size":   "dataconf.shardsize",
	"threads":      "dataconf.numthreads",
	"max_attempts": "retryconf.maxattempts",
	"retry_delay":  "retryconf.delay",
	"backoff":      "retryconf.backoff",
	"job":          "jobconf.name",
	"num_tasks":    "jobconf.nummappers",
	"num_classes":  "jobconf.numclasses",
	"algorithm":    "jobconf.algorithm",
	"input":        "jobconf.inputpattern",
	"test_file":    "jobconf.testfilepath",
	"prune_file":   "jobconf.prunefilepath",
	"output":       "jobconf.outputpath",
	"etcd_urls":    "jobconf.etcdurls",
}

// Load reads the configuration from defaults, the optional file at path,
// HARPLOAD_* environment variables and the changed flags, in increasing
// precedence. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %v", path, err)
		}
	}
	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("config: decode: %v", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load env %s: %v", p, err)
		}
	}
	return nil
}
