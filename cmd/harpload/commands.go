package main

import (
	"fmt"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-etcd/etcd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/taskgraph/harpload/config"
	"github.com/taskgraph/harpload/controller"
	"github.com/taskgraph/harpload/datasource"
	"github.com/taskgraph/harpload/mapper"
	"github.com/taskgraph/harpload/pkg/etcdutil"
	pb "github.com/taskgraph/harpload/shardpb"
	"github.com/taskgraph/harpload/shardserver"
)

// newStore connects to etcd. Tests swap it for an in-memory store.
var newStore = func(urls []string) etcdutil.Store {
	return etcd.NewClient(urls)
}

func newControllerCmd() *cobra.Command {
	var interval time.Duration
	var keep bool
	cmd := &cobra.Command{
		Use:   "controller",
		Short: "Publish the job layout to etcd and wait for the tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			client, err := conf.IOConf.Client()
			if err != nil {
				return err
			}
			files, err := controller.DiscoverInputs(client, conf.JobConf.InputPattern)
			if err != nil {
				return err
			}
			c := controller.New(conf.JobConf.Name, newStore(conf.JobConf.EtcdURLs),
				uint64(conf.JobConf.NumMappers), logrus.StandardLogger())
			if err := c.Start(conf, files); err != nil {
				return err
			}
			if !keep {
				defer c.Stop()
			}
			return c.WaitForJobDone(cmd.Context(), interval)
		},
	}
	addJobFlags(cmd.Flags())
	cmd.Flags().DurationVar(&interval, "poll", time.Second, "Task status poll interval.")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the etcd layout after the job ends.")
	return cmd
}

func newTaskCmd() *cobra.Command {
	var (
		job      string
		taskID   uint64
		etcdURLs []string
		listen   string
		serve    bool
	)
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Load the files assigned to one task",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newStore(etcdURLs)
			buf, err := etcdutil.GetConfig(store, job)
			if err != nil {
				return fmt.Errorf("read config of job %s: %v", job, err)
			}
			conf, err := config.Parse(buf)
			if err != nil {
				return err
			}
			client, err := conf.IOConf.Client()
			if err != nil {
				return err
			}
			logger := logrus.WithFields(logrus.Fields{"job": job, "task": taskID})

			ln, err := createListener(listen)
			if err != nil {
				return err
			}
			server := shardserver.New(logger)
			go server.Serve(ln)
			defer server.Stop()
			if _, err := etcdutil.RegisterNode(store, job, taskID, ln.Addr().String()); err != nil {
				return err
			}

			stop := make(chan struct{})
			defer close(stop)
			go func() {
				if err := etcdutil.Heartbeat(store, job, taskID, time.Second, stop); err != nil {
					logger.WithError(err).Warn("heartbeat stopped")
				}
			}()

			m := mapper.New(job, taskID, store, client, logger)
			m.AttachServer(server)
			if err := m.Setup(conf); err != nil {
				return err
			}
			if err := m.MapCollective(cmd.Context()); err != nil {
				return err
			}
			if serve {
				logger.Infof("serving shards on %s", ln.Addr())
				<-cmd.Context().Done()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&job, "job", "harpload", "Job name.")
	cmd.Flags().Uint64Var(&taskID, "task_id", 0, "ID of the task. 0 ~ num_tasks-1")
	cmd.Flags().StringSliceVar(&etcdURLs, "etcd_urls", []string{"http://127.0.0.1:2379"}, "List of etcd instances.")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:0", "Address the shard server listens on.")
	cmd.Flags().BoolVar(&serve, "serve", false, "Keep serving shards after loading until interrupted.")
	return cmd
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert delimited files into shard files without a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if conf.JobConf.OutputPath == "" {
				return fmt.Errorf("convert needs --output")
			}
			client, err := conf.IOConf.Client()
			if err != nil {
				return err
			}
			opts, err := conf.ReaderOptions(logrus.StandardLogger())
			if err != nil {
				return err
			}
			ds := datasource.NewDataSource(client, conf.DataConf.NumThreads, opts...)
			files, err := ds.ExpandPaths([]string{conf.JobConf.InputPattern})
			if err != nil {
				return err
			}
			lists, err := ds.LoadShards(cmd.Context(), files, conf.DataConf.FileDim, conf.DataConf.Separator)
			if err != nil {
				return err
			}
			for i, f := range files {
				name := path.Join(conf.JobConf.OutputPath, strings.TrimSuffix(path.Base(f), path.Ext(f))+".pb")
				if err := pb.SaveShardSet(client, pb.ToShardSet(f, conf.DataConf.FileDim, lists[i]), name); err != nil {
					return err
				}
				logrus.WithFields(logrus.Fields{
					"input":  f,
					"output": name,
					"rows":   lists[i].NumRows(),
					"shards": len(lists[i]),
				}).Info("converted")
			}
			return nil
		},
	}
	addJobFlags(cmd.Flags())
	return cmd
}

func newFetchCmd() *cobra.Command {
	var (
		addr     string
		job      string
		taskID   uint64
		etcdURLs []string
		name     string
		list     bool
		sep      string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the shards a task serves, or list them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				a, err := etcdutil.GetTaskAddress(newStore(etcdURLs), job, taskID)
				if err != nil {
					return fmt.Errorf("resolve address of task %d of job %s: %v", taskID, job, err)
				}
				addr = a
			}
			return fetch(cmd, addr, name, taskID, list, sep)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address of the task's shard server, looked up in etcd when empty.")
	cmd.Flags().StringVar(&job, "job", "harpload", "Job name.")
	cmd.Flags().Uint64Var(&taskID, "task_id", 0, "ID of the task to fetch from.")
	cmd.Flags().StringSliceVar(&etcdURLs, "etcd_urls", []string{"http://127.0.0.1:2379"}, "List of etcd instances.")
	cmd.Flags().StringVar(&name, "name", "", "Shard name, the task's own shards when empty.")
	cmd.Flags().BoolVar(&list, "list", false, "List the shard names instead of printing rows.")
	cmd.Flags().StringVar(&sep, "sep", ",", "Separator of the printed values.")
	return cmd
}

func fetch(cmd *cobra.Command, addr, name string, taskID uint64, list bool, sep string) error {
	out := cmd.OutOrStdout()
	if list {
		names, err := shardserver.List(cmd.Context(), addr)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	}
	if name == "" {
		name = mapper.ShardName(taskID)
	}
	l, err := shardserver.Fetch(cmd.Context(), addr, name)
	if err != nil {
		return err
	}
	for _, row := range l.Rows() {
		s := make([]string, len(row))
		for i, v := range row {
			s[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintln(out, strings.Join(s, sep))
	}
	return nil
}

func createListener(addr string) (net.Listener, error) {
	l, err := net.Listen("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen(\"tcp4\", %q) failed: %v", addr, err)
	}
	return l, nil
}
