// Package shardserver lets a task serve the shards it loaded to its peers.
package shardserver

import (
	"net"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload/datasource"
	pb "github.com/taskgraph/harpload/shardpb"
	"golang.org/x/net/context"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type Server struct {
	mu     sync.RWMutex
	sets   map[string]*pb.ShardSet
	server *grpc.Server
	logger logrus.FieldLogger
}

func New(logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		sets:   make(map[string]*pb.ShardSet),
		server: grpc.NewServer(),
		logger: logger,
	}
	pb.RegisterShardServiceServer(s.server, s)
	return s
}

// Put makes the shards of path available to peers, replacing any earlier
// version.
func (s *Server) Put(path string, cols int, l datasource.ShardList) {
	set := pb.ToShardSet(path, cols, l)
	s.mu.Lock()
	s.sets[path] = set
	s.mu.Unlock()
}

func (s *Server) GetShards(ctx context.Context, req *pb.FetchRequest) (*pb.ShardSet, error) {
	s.mu.RLock()
	set, ok := s.sets[req.GetPath()]
	s.mu.RUnlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no shards loaded for %s", req.GetPath())
	}
	return set, nil
}

func (s *Server) ListShards(ctx context.Context, req *pb.ListRequest) (*pb.ListResponse, error) {
	s.mu.RLock()
	paths := make([]string, 0, len(s.sets))
	for p := range s.sets {
		paths = append(paths, p)
	}
	s.mu.RUnlock()
	sort.Strings(paths)
	return &pb.ListResponse{Paths: paths}, nil
}

// Serve blocks until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.WithField("address", ln.Addr().String()).Info("shard server listening")
	return s.server.Serve(ln)
}

func (s *Server) Stop() {
	s.server.Stop()
}

func dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// Fetch asks the task at addr for the shards it loaded from path.
func Fetch(ctx context.Context, addr, path string) (datasource.ShardList, error) {
	conn, err := dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	set, err := pb.NewShardServiceClient(conn).GetShards(ctx, &pb.FetchRequest{Path: path})
	if err != nil {
		return nil, err
	}
	return pb.FromShardSet(set)
}

// List returns the paths whose shards the task at addr serves.
func List(ctx context.Context, addr string) ([]string, error) {
	conn, err := dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	resp, err := pb.NewShardServiceClient(conn).ListShards(ctx, &pb.ListRequest{})
	if err != nil {
		return nil, err
	}
	return resp.GetPaths(), nil
}
